package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// ErrInvalidDate is wrapped by every InvalidDateError.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// InvalidDateError reports a month/day pair that is not a calendar date,
// such as 04/31 or 02/30.
type InvalidDateError struct {
	Month time.Month
	Day   int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("%s: %02d/%02d", config.ErrInvalidDate, int(e.Month), e.Day)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}

// ValidMonthDay reports whether month/day exists in a leap year.
// 02/29 is therefore valid; it is observed on March 1st in other years.
func ValidMonthDay(month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	t := time.Date(config.DefaultLeapYear, month, day, 0, 0, 0, 0, time.UTC)
	return t.Month() == month && t.Day() == day
}

// DaysUntil returns the number of calendar days from today to the next
// occurrence of month/day. It is 0 on the birthday itself and never negative.
func DaysUntil(today time.Time, month time.Month, day int) (int, error) {
	if !ValidMonthDay(month, day) {
		return 0, &InvalidDateError{Month: month, Day: day}
	}
	next := nextOccurrence(today, month, day)
	return daysBetween(today, next), nil
}

// nextOccurrence determines the next birthday date relative to 'today'.
func nextOccurrence(today time.Time, month time.Month, day int) time.Time {
	loc := today.Location()

	// Go's time.Date normalizes Feb 29 to March 1st if the year is not a leap year.
	candidate := time.Date(today.Year(), month, day, 0, 0, 0, 0, loc)

	if candidate.Before(StartOfDay(today)) {
		// Birthday has already passed this year, next one is next year.
		candidate = time.Date(today.Year()+1, month, day, 0, 0, 0, 0, loc)
	}
	return candidate
}

// daysBetween counts calendar days between the dates of a and b.
// Both are projected onto UTC midnight so DST transitions cannot skew the result.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()) / config.HoursPerDay
}
