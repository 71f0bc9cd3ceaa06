package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// It decides what "today" is for the selector, the digest and the ledger keys.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
// A nil Location keeps the process local time.
type RealClock struct {
	Location *time.Location
}

// Now returns the current time in the configured location.
func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
