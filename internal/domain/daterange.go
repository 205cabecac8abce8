package domain

import "time"

// StayRange is a half-open date interval [CheckIn, CheckOut).
// Both bounds are date-only values (midnight UTC).
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStayRange builds a StayRange truncating both bounds to date-only values
func NewStayRange(checkIn, checkOut time.Time) StayRange {
	return StayRange{
		CheckIn:  DateOnly(checkIn),
		CheckOut: DateOnly(checkOut),
	}
}

// Nights returns the number of nights between check-in and check-out
func (r StayRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// IsValid returns true if check-out is strictly later than check-in
func (r StayRange) IsValid() bool {
	return r.CheckOut.After(r.CheckIn)
}

// Overlaps reports whether two half-open ranges intersect.
// Touching endpoints (one stay's check-out equal to another's check-in)
// do not count as an overlap.
func (r StayRange) Overlaps(other StayRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// DateOnly truncates a timestamp to midnight UTC of the same calendar day
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
