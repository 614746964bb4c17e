package model

import "errors"

// Domain error kinds. Callers match these with errors.Is; lower layers
// wrap them with context via fmt.Errorf("...: %w", ...).
var (
	// ErrValidation marks malformed input: bad date order, non-positive
	// nights, excessive guest count. Caller-correctable, never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing listing or reservation.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks an unavailable date range, whether detected by the
	// pre-check or at the storage exclusion constraint.
	ErrConflict = errors.New("dates not available")

	// ErrForbidden marks an actor without permission for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition marks a status change not permitted from the
	// reservation's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUpstream marks a failed or timed-out listing-service call. Safe
	// for the caller to retry with backoff; never retried internally.
	ErrUpstream = errors.New("listing service unavailable")

	// ErrInternal marks a generation or storage failure unrelated to the
	// kinds above.
	ErrInternal = errors.New("internal error")
)
