// Package repository implements all database queries for the reservation
// ledger. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/westay/reservations/internal/model"
)

// ErrCodeTaken is returned when an insert collides on the human_code
// unique constraint. The service retries with a fresh code.
var ErrCodeTaken = errors.New("human code already taken")

// Postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

const reservationColumns = `id, human_code, listing_id, requester_id, check_in, check_out,
	guest_count, total_price, currency, status, special_requests, cancellation_reason,
	created_at, updated_at`

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db *pgxpool.Pool
}

// NewReservationRepository constructs a ReservationRepository.
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts a new reservation row.
//
// The service layer pre-checks availability for a friendly error, but the
// pre-check and this insert are not atomic: two concurrent requests for
// overlapping dates can both pass the pre-check. The reservations_no_overlap
// exclusion constraint is the real guard — the second insert fails inside
// Postgres and is translated to model.ErrConflict here, so exactly one of
// two conflicting concurrent creates succeeds. A human_code collision is
// translated to ErrCodeTaken so the caller can retry with a new code.
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reservations (`+reservationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		res.ID, res.HumanCode, res.ListingID, res.RequesterID,
		res.CheckIn, res.CheckOut, res.GuestCount, res.TotalPrice, res.Currency,
		res.Status, res.SpecialRequests, nullable(res.CancellationReason),
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgExclusionViolation:
				return fmt.Errorf("%w: listing %s for %s to %s", model.ErrConflict,
					res.ListingID, res.CheckIn.Format("2006-01-02"), res.CheckOut.Format("2006-01-02"))
			case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "reservations_human_code_key":
				return ErrCodeTaken
			}
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetByID returns a single reservation or model.ErrNotFound.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

// GetByCode returns the reservation with the given human code or model.ErrNotFound.
func (r *ReservationRepository) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE human_code = $1`, code)
	return scanReservation(row)
}

// ListByListing returns reservations for a listing ordered by check-in.
// With activeOnly set, cancelled and rejected rows are filtered out —
// this is the comparison set for availability checks.
func (r *ReservationRepository) ListByListing(ctx context.Context, listingID string, activeOnly bool) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE listing_id = $1`
	if activeOnly {
		query += ` AND status NOT IN ('cancelled', 'rejected')`
	}
	query += ` ORDER BY check_in ASC`

	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by listing: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByRequester returns all reservations made by a user, newest first.
func (r *ReservationRepository) ListByRequester(ctx context.Context, requesterID string) ([]model.Reservation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE requester_id = $1
		 ORDER BY created_at DESC`,
		requesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations by requester: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// UpdateStatus performs a compare-and-swap status change: the row is only
// updated if it is still in the expected `from` status, so a concurrent
// transition loses cleanly instead of clobbering. Returns the updated row,
// model.ErrNotFound if the reservation is absent, or
// model.ErrInvalidTransition if the row has moved on from `from`.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, from, to model.Status, reason string) (*model.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE reservations
		 SET status = $3,
		     cancellation_reason = CASE WHEN $3 IN ('cancelled', 'rejected') THEN $4 ELSE cancellation_reason END,
		     updated_at = $5
		 WHERE id = $1 AND status = $2
		 RETURNING `+reservationColumns,
		id, from, to, nullable(reason), time.Now().UTC(),
	)
	res, err := scanReservation(row)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	// No row matched: distinguish a missing reservation from one whose
	// status changed underneath us.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: reservation %s is no longer %s", model.ErrInvalidTransition, id, from)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		res    model.Reservation
		reason *string
	)
	err := row.Scan(
		&res.ID, &res.HumanCode, &res.ListingID, &res.RequesterID,
		&res.CheckIn, &res.CheckOut, &res.GuestCount, &res.TotalPrice, &res.Currency,
		&res.Status, &res.SpecialRequests, &reason,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	if reason != nil {
		res.CancellationReason = *reason
	}
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]model.Reservation, error) {
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
