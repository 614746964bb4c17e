// Package listing is the client for the external listing service. The
// ledger only ever asks one question of it: capacity, nightly rate,
// currency, owner, and whether the listing is active.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/westay/reservations/internal/model"
)

// Directory resolves listing IDs to listing data.
type Directory interface {
	GetListingInfo(ctx context.Context, listingID string) (*model.ListingInfo, error)
}

// Client fetches listing data over HTTP. Lookups are a single attempt
// with a short timeout; a stuck listing service surfaces as
// model.ErrUpstream rather than hanging the caller. Retry policy is the
// caller's decision.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for the given listing-service base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetListingInfo fetches a single listing. Returns model.ErrNotFound for
// a 404 and model.ErrUpstream for transport failures or unexpected
// statuses.
func (c *Client) GetListingInfo(ctx context.Context, listingID string) (*model.ListingInfo, error) {
	endpoint := fmt.Sprintf("%s/api/listings/%s", c.baseURL, url.PathEscape(listingID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: listing %s", model.ErrNotFound, listingID)
	default:
		return nil, fmt.Errorf("%w: listing service returned %d", model.ErrUpstream, resp.StatusCode)
	}

	var info model.ListingInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode listing response: %v", model.ErrUpstream, err)
	}
	return &info, nil
}
