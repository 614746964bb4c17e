// Package model defines the core domain types for the reservation ledger.
package model

import "time"

// Reservation is a requested or confirmed stay for a listing over a
// half-open date range [CheckIn, CheckOut). A stay ending on day D does
// not conflict with one starting on day D.
type Reservation struct {
	ID                 string    `json:"id"`
	HumanCode          string    `json:"human_code"`
	ListingID          string    `json:"listing_id"`
	RequesterID        string    `json:"requester_id"`
	CheckIn            time.Time `json:"check_in"`
	CheckOut           time.Time `json:"check_out"`
	GuestCount         int       `json:"guest_count"`
	TotalPrice         float64   `json:"total_price"`
	Currency           string    `json:"currency"`
	Status             Status    `json:"status"`
	SpecialRequests    string    `json:"special_requests,omitempty"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Nights returns the length of the stay in calendar days.
func (r *Reservation) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// ListingInfo is the subset of listing data the ledger consults. Listings
// are owned by an external service; this is a read-only projection.
type ListingInfo struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Capacity    int     `json:"capacity"`
	NightlyRate float64 `json:"nightly_rate"`
	Currency    string  `json:"currency"`
	IsActive    bool    `json:"is_active"`
}

// PriceQuote is the result of a price calculation. It is never persisted;
// the authoritative price is fixed on the reservation at creation time.
type PriceQuote struct {
	ListingID   string  `json:"listing_id"`
	Nights      int     `json:"nights"`
	NightlyRate float64 `json:"nightly_rate"`
	TotalPrice  float64 `json:"total_price"`
	Currency    string  `json:"currency"`
}

// CreateReservationRequest is the payload for creating a reservation.
// Dates use the YYYY-MM-DD wire format.
type CreateReservationRequest struct {
	ListingID       string `json:"listing_id" validate:"required"`
	RequesterID     string `json:"requester_id" validate:"required"`
	CheckIn         string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" validate:"required,datetime=2006-01-02"`
	GuestCount      int    `json:"guest_count" validate:"required,min=1,max=50"`
	SpecialRequests string `json:"special_requests" validate:"max=1000"`
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	ActingUserID string `json:"acting_user_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	Reason       string `json:"reason" validate:"max=500"`
}

// AvailabilityCheckRequest is the payload for an availability probe.
type AvailabilityCheckRequest struct {
	ListingID            string `json:"listing_id" validate:"required"`
	CheckIn              string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut             string `json:"check_out" validate:"required,datetime=2006-01-02"`
	ExcludeReservationID string `json:"exclude_reservation_id"`
}

// AvailabilityResponse reports whether a listing is free for a range.
type AvailabilityResponse struct {
	ListingID string `json:"listing_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
