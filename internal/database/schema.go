package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema bootstraps the reservations table. The reservations_no_overlap
// exclusion constraint is the authoritative double-booking guard: for a
// given listing, active rows may not hold overlapping daterange values.
// Postgres daterange is half-open, so a checkout on day D coexists with a
// check-in on day D. btree_gist is needed to mix the equality test on
// listing_id into the GiST index.
const schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS reservations (
	id                  UUID PRIMARY KEY,
	human_code          TEXT NOT NULL,
	listing_id          TEXT NOT NULL,
	requester_id        TEXT NOT NULL,
	check_in            DATE NOT NULL,
	check_out           DATE NOT NULL,
	guest_count         INT  NOT NULL CHECK (guest_count > 0),
	total_price         NUMERIC(10,2) NOT NULL CHECK (total_price >= 0),
	currency            TEXT NOT NULL DEFAULT 'USD',
	status              TEXT NOT NULL,
	special_requests    TEXT NOT NULL DEFAULT '',
	cancellation_reason TEXT,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	CHECK (check_in < check_out),
	CONSTRAINT reservations_human_code_key UNIQUE (human_code),
	CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
		listing_id WITH =,
		daterange(check_in, check_out) WITH &&
	) WHERE (status NOT IN ('cancelled', 'rejected'))
);

CREATE INDEX IF NOT EXISTS idx_reservations_listing ON reservations (listing_id);
CREATE INDEX IF NOT EXISTS idx_reservations_requester ON reservations (requester_id);
`

// Migrate applies the reservation schema. Statements are idempotent, so
// running this on every startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply reservation schema: %w", err)
	}
	return nil
}
