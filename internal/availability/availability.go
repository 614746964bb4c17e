// Package availability implements the pure date-range logic for the
// reservation ledger: the overlap predicate, the conflict scan over a
// listing's reservations, and the unavailable-day expansion.
//
// All ranges are half-open [checkIn, checkOut): a checkout on day D does
// not conflict with a check-in on day D. The package has no side effects
// and is safe for concurrent use.
package availability

import (
	"sort"
	"time"

	"github.com/westay/reservations/internal/model"
)

// Day strips the time-of-day component, normalizing to midnight UTC.
// All dates entering the ledger pass through here so comparisons are
// pure calendar-day comparisons.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the half-open ranges [aIn, aOut) and
// [bIn, bOut) share at least one day.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// HasConflict reports whether [checkIn, checkOut) collides with any
// reservation in the set that still blocks availability. A reservation
// matching excludeID is skipped, which supports re-checking dates for an
// existing reservation.
func HasConflict(reservations []model.Reservation, checkIn, checkOut time.Time, excludeID string) bool {
	for i := range reservations {
		r := &reservations[i]
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if !r.Status.BlocksAvailability() {
			continue
		}
		if Overlaps(checkIn, checkOut, r.CheckIn, r.CheckOut) {
			return true
		}
	}
	return false
}

// UnavailableDays expands every blocking reservation into individual
// calendar days, intersects them with the inclusive window
// [rangeStart, rangeEnd], and returns the deduplicated days in ascending
// order. Checkout days are excluded.
func UnavailableDays(reservations []model.Reservation, rangeStart, rangeEnd time.Time) []time.Time {
	rangeStart = Day(rangeStart)
	rangeEnd = Day(rangeEnd)

	seen := make(map[time.Time]struct{})
	for i := range reservations {
		r := &reservations[i]
		if !r.Status.BlocksAvailability() {
			continue
		}
		for d := Day(r.CheckIn); d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
			if d.Before(rangeStart) || d.After(rangeEnd) {
				continue
			}
			seen[d] = struct{}{}
		}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
