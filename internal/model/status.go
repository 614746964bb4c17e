package model

import "fmt"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRejected, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// BlocksAvailability reports whether a reservation in this status holds
// its date range. Cancelled and rejected reservations release their dates.
func (s Status) BlocksAvailability() bool {
	return s != StatusCancelled && s != StatusRejected
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusRejected || s == StatusCompleted
}

// Role identifies who is acting on a reservation.
type Role string

const (
	RoleRequester Role = "requester"
	RoleOwner     Role = "owner"
)

type transition struct {
	from Status
	to   Status
}

// transitions is the full set of permitted status changes and the roles
// allowed to perform each. Anything absent is an invalid transition.
var transitions = map[transition][]Role{
	{StatusPending, StatusConfirmed}:   {RoleOwner},
	{StatusPending, StatusRejected}:    {RoleOwner},
	{StatusPending, StatusCancelled}:   {RoleRequester},
	{StatusConfirmed, StatusCancelled}: {RoleRequester, RoleOwner},
}

// TransitionAllowed reports whether the change from -> to exists in the
// lifecycle at all, ignoring who performs it.
func TransitionAllowed(from, to Status) bool {
	_, ok := transitions[transition{from, to}]
	return ok
}

// RoleMayTransition reports whether the given role may perform the
// change from -> to.
func RoleMayTransition(from, to Status, role Role) bool {
	for _, r := range transitions[transition{from, to}] {
		if r == role {
			return true
		}
	}
	return false
}
