// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/westay/reservations/internal/availability"
	"github.com/westay/reservations/internal/listing"
	"github.com/westay/reservations/internal/model"
	"github.com/westay/reservations/internal/repository"
)

// maxCodeAttempts bounds retries when a generated human code collides
// with an existing one. With 36^8 possible codes a collision is already
// rare; hitting the bound means something is wrong with generation.
const maxCodeAttempts = 5

// timeNow is swapped out in tests to pin "today".
var timeNow = time.Now

// ReservationStore is the persistence surface the service depends on.
// *repository.ReservationRepository satisfies it.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetByCode(ctx context.Context, code string) (*model.Reservation, error)
	ListByListing(ctx context.Context, listingID string, activeOnly bool) ([]model.Reservation, error)
	ListByRequester(ctx context.Context, requesterID string) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, id string, from, to model.Status, reason string) (*model.Reservation, error)
}

// ReservationService orchestrates availability checks, pricing, and the
// reservation lifecycle.
type ReservationService struct {
	store    ReservationStore
	listings listing.Directory
}

// NewReservationService constructs a ReservationService with its dependencies.
func NewReservationService(store ReservationStore, listings listing.Directory) *ReservationService {
	return &ReservationService{store: store, listings: listings}
}

// CreateInput carries the validated, typed parameters for a new reservation.
type CreateInput struct {
	ListingID       string
	RequesterID     string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestCount      int
	SpecialRequests string
}

// CreateReservation validates the request, checks availability, computes
// the price, and persists a new pending reservation.
//
// The availability pre-check here gives a clean error message on the
// common path; the storage exclusion constraint remains the authoritative
// guard against two conflicting concurrent creates (see repository.Create).
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	checkIn := availability.Day(in.CheckIn)
	checkOut := availability.Day(in.CheckOut)

	if !checkIn.Before(checkOut) {
		return nil, fmt.Errorf("%w: check-in must be before check-out", model.ErrValidation)
	}
	if checkIn.Before(availability.Day(timeNow().UTC())) {
		return nil, fmt.Errorf("%w: check-in cannot be in the past", model.ErrValidation)
	}
	if in.GuestCount <= 0 {
		return nil, fmt.Errorf("%w: guest count must be positive", model.ErrValidation)
	}

	info, err := s.listings.GetListingInfo(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !info.IsActive {
		return nil, fmt.Errorf("%w: listing %s is not active", model.ErrNotFound, in.ListingID)
	}
	if in.GuestCount > info.Capacity {
		return nil, fmt.Errorf("%w: %d guests exceeds listing capacity of %d",
			model.ErrValidation, in.GuestCount, info.Capacity)
	}

	existing, err := s.store.ListByListing(ctx, in.ListingID, true)
	if err != nil {
		return nil, fmt.Errorf("load reservations for availability check: %w", err)
	}
	if availability.HasConflict(existing, checkIn, checkOut, "") {
		return nil, fmt.Errorf("%w: listing %s is not available for these dates", model.ErrConflict, in.ListingID)
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	now := timeNow().UTC()
	res := &model.Reservation{
		ID:              uuid.New().String(),
		ListingID:       in.ListingID,
		RequesterID:     in.RequesterID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      in.GuestCount,
		TotalPrice:      info.NightlyRate * float64(nights),
		Currency:        info.Currency,
		Status:          model.StatusPending,
		SpecialRequests: in.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for attempt := 1; ; attempt++ {
		code, err := generateHumanCode()
		if err != nil {
			return nil, fmt.Errorf("%w: generate human code: %v", model.ErrInternal, err)
		}
		res.HumanCode = code

		err = s.store.Create(ctx, res)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, repository.ErrCodeTaken) {
			if attempt >= maxCodeAttempts {
				return nil, fmt.Errorf("%w: human code collided %d times", model.ErrInternal, attempt)
			}
			continue
		}
		return nil, err
	}
}

// UpdateStatus moves a reservation through its lifecycle on behalf of an
// actor, enforcing the transition table:
//
//	pending   -> confirmed  (owner)
//	pending   -> rejected   (owner)
//	pending   -> cancelled  (requester)
//	confirmed -> cancelled  (requester or owner)
//
// Cancelled, rejected, and completed are terminal.
func (s *ReservationService) UpdateStatus(ctx context.Context, reservationID, actingUserID string, newStatus model.Status, reason string) (*model.Reservation, error) {
	res, err := s.store.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	role, err := s.resolveRole(ctx, res, actingUserID)
	if err != nil {
		return nil, err
	}

	if !model.TransitionAllowed(res.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, res.Status, newStatus)
	}
	if !model.RoleMayTransition(res.Status, newStatus, role) {
		return nil, fmt.Errorf("%w: %s may not set status %s", model.ErrForbidden, role, newStatus)
	}

	return s.store.UpdateStatus(ctx, reservationID, res.Status, newStatus, reason)
}

// resolveRole determines whether the acting user is the requester or the
// listing owner. The requester check comes first so requester actions
// never need an upstream listing lookup.
func (s *ReservationService) resolveRole(ctx context.Context, res *model.Reservation, actingUserID string) (model.Role, error) {
	if actingUserID == res.RequesterID {
		return model.RoleRequester, nil
	}

	info, err := s.listings.GetListingInfo(ctx, res.ListingID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", fmt.Errorf("%w: user %s is neither requester nor owner", model.ErrForbidden, actingUserID)
		}
		return "", err
	}
	if actingUserID == info.OwnerID {
		return model.RoleOwner, nil
	}
	return "", fmt.Errorf("%w: user %s is neither requester nor owner", model.ErrForbidden, actingUserID)
}

// IsAvailable reports whether the listing is free for [checkIn, checkOut).
// A reservation matching excludeReservationID is left out of the
// comparison set, which supports date-change rechecks. Read-only.
func (s *ReservationService) IsAvailable(ctx context.Context, listingID string, checkIn, checkOut time.Time, excludeReservationID string) (bool, error) {
	checkIn = availability.Day(checkIn)
	checkOut = availability.Day(checkOut)
	if !checkIn.Before(checkOut) {
		return false, fmt.Errorf("%w: check-in must be before check-out", model.ErrValidation)
	}

	existing, err := s.store.ListByListing(ctx, listingID, true)
	if err != nil {
		return false, fmt.Errorf("load reservations for availability check: %w", err)
	}
	return !availability.HasConflict(existing, checkIn, checkOut, excludeReservationID), nil
}

// CalculatePrice quotes a stay: nightly rate times the number of calendar
// nights. The quote is recomputed from current listing data on every call
// and never mutates anything; the price persisted on a reservation is
// fixed at creation time and is not affected by later quotes.
func (s *ReservationService) CalculatePrice(ctx context.Context, listingID string, checkIn, checkOut time.Time) (*model.PriceQuote, error) {
	checkIn = availability.Day(checkIn)
	checkOut = availability.Day(checkOut)

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights <= 0 {
		return nil, fmt.Errorf("%w: stay must be at least one night", model.ErrValidation)
	}

	info, err := s.listings.GetListingInfo(ctx, listingID)
	if err != nil {
		return nil, err
	}

	return &model.PriceQuote{
		ListingID:   listingID,
		Nights:      nights,
		NightlyRate: info.NightlyRate,
		TotalPrice:  info.NightlyRate * float64(nights),
		Currency:    info.Currency,
	}, nil
}

// UnavailableDates returns the sorted, deduplicated calendar days within
// [rangeStart, rangeEnd] that are held by active reservations. Checkout
// days are excluded. Callers use this to grey out booked days.
func (s *ReservationService) UnavailableDates(ctx context.Context, listingID string, rangeStart, rangeEnd time.Time) ([]time.Time, error) {
	rangeStart = availability.Day(rangeStart)
	rangeEnd = availability.Day(rangeEnd)
	if rangeEnd.Before(rangeStart) {
		return nil, fmt.Errorf("%w: range end before range start", model.ErrValidation)
	}

	existing, err := s.store.ListByListing(ctx, listingID, true)
	if err != nil {
		return nil, fmt.Errorf("load reservations for date report: %w", err)
	}
	return availability.UnavailableDays(existing, rangeStart, rangeEnd), nil
}

// GetReservation returns a single reservation by ID.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: reservation id is required", model.ErrValidation)
	}
	return s.store.GetByID(ctx, id)
}

// GetReservationByCode returns a single reservation by its human code.
func (s *ReservationService) GetReservationByCode(ctx context.Context, code string) (*model.Reservation, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: reservation code is required", model.ErrValidation)
	}
	return s.store.GetByCode(ctx, code)
}

// ListListingReservations returns reservations for a listing, optionally
// restricted to those still holding their dates.
func (s *ReservationService) ListListingReservations(ctx context.Context, listingID string, activeOnly bool) ([]model.Reservation, error) {
	if listingID == "" {
		return nil, fmt.Errorf("%w: listing id is required", model.ErrValidation)
	}
	return s.store.ListByListing(ctx, listingID, activeOnly)
}

// ListUserReservations returns all reservations made by a user.
func (s *ReservationService) ListUserReservations(ctx context.Context, requesterID string) ([]model.Reservation, error) {
	if requesterID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	return s.store.ListByRequester(ctx, requesterID)
}
