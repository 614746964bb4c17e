package listing

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/westay/reservations/internal/model"
)

// CachedDirectory wraps a Directory with a Redis TTL cache. Listing data
// changes rarely relative to how often availability and price checks read
// it, so a short TTL cuts most cross-service traffic. Cache failures are
// never fatal: any Redis error falls through to the inner Directory.
type CachedDirectory struct {
	inner Directory
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedDirectory wraps inner with a Redis cache using the given TTL.
func NewCachedDirectory(inner Directory, rdb *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(listingID string) string {
	return "listing:" + listingID
}

// GetListingInfo returns the cached listing if present, otherwise asks
// the inner Directory and caches the result. Only successful lookups are
// cached — NotFound and Upstream errors always propagate uncached.
func (c *CachedDirectory) GetListingInfo(ctx context.Context, listingID string) (*model.ListingInfo, error) {
	if raw, err := c.rdb.Get(ctx, cacheKey(listingID)).Bytes(); err == nil {
		var info model.ListingInfo
		if err := json.Unmarshal(raw, &info); err == nil {
			return &info, nil
		}
		// Corrupt entry: drop it and fall through.
		c.rdb.Del(ctx, cacheKey(listingID))
	}

	info, err := c.inner.GetListingInfo(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(info); err == nil {
		if err := c.rdb.Set(ctx, cacheKey(listingID), raw, c.ttl).Err(); err != nil {
			log.Printf("listing cache write failed for %s: %v", listingID, err)
		}
	}
	return info, nil
}
