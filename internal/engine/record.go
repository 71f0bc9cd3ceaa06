package engine

import (
	"fmt"
	"time"
)

// Record is one birthday loaded from the source file.
// Records are immutable within a run.
type Record struct {
	// Name is trimmed and NFC-normalized so ledger keys stay stable.
	Name string

	Month time.Month
	Day   int

	// Importance is the tier (1-3) selecting the reminder thresholds.
	Importance int
}

// MonthDay renders the birthday in the source file layout (MM/DD).
func (r Record) MonthDay() string {
	return fmt.Sprintf("%02d/%02d", int(r.Month), r.Day)
}

// BirthdayEntry is a record projected onto the calendar relative to a given day.
// It backs the "list" view and the calendar export.
type BirthdayEntry struct {
	Record

	// NextOccurrence is the date of the birthday for the current or next year.
	// This is the primary sorting key for the upcoming view.
	NextOccurrence time.Time

	// DaysUntil is the number of calendar days from today to NextOccurrence.
	DaysUntil int
}
