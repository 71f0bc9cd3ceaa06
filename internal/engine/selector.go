package engine

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// Reminder is a candidate notification: Name's birthday is Days away and Days
// is one of the thresholds configured for the record's tier.
type Reminder struct {
	Name string
	Days int
}

// Select returns today's reminders in input order. Records whose month/day is
// not a calendar date are skipped with a warning. A tier missing from
// thresholds never fires.
func Select(today time.Time, records []Record, thresholds map[int][]int, logger *slog.Logger) []Reminder {
	log := loggerOr(logger).With(config.LogKeyComponent, config.CompSelector)

	var out []Reminder
	for _, rec := range records {
		days, err := DaysUntil(today, rec.Month, rec.Day)
		if err != nil {
			log.Warn(config.MsgSkippedDate,
				config.LogKeyName, rec.Name,
				config.LogKeyDate, rec.MonthDay(),
				config.LogKeyError, err)
			continue
		}
		if slices.Contains(thresholds[rec.Importance], days) {
			out = append(out, Reminder{Name: rec.Name, Days: days})
		}
	}
	return out
}

// Upcoming projects every valid record onto the calendar relative to today,
// sorted by how soon the birthday comes (then by name). A positive within
// limits the result to birthdays at most that many days away.
func Upcoming(today time.Time, records []Record, within int, logger *slog.Logger) []BirthdayEntry {
	log := loggerOr(logger).With(config.LogKeyComponent, config.CompSelector)

	entries := make([]BirthdayEntry, 0, len(records))
	for _, rec := range records {
		days, err := DaysUntil(today, rec.Month, rec.Day)
		if err != nil {
			log.Warn(config.MsgSkippedDate,
				config.LogKeyName, rec.Name,
				config.LogKeyDate, rec.MonthDay(),
				config.LogKeyError, err)
			continue
		}
		if within > 0 && days > within {
			continue
		}
		entries = append(entries, BirthdayEntry{
			Record:         rec,
			NextOccurrence: nextOccurrence(today, rec.Month, rec.Day),
			DaysUntil:      days,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DaysUntil != entries[j].DaysUntil {
			return entries[i].DaysUntil < entries[j].DaysUntil
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries
}

// InMonth returns the records whose birthday is observed in month of year,
// sorted by day ascending. Records sharing a day keep their file order.
// In non-leap years 02/29 is observed on March 1st and is returned with that
// date, so February never lists a day that does not exist.
func InMonth(records []Record, year int, month time.Month) []Record {
	var out []Record
	for _, rec := range records {
		if !ValidMonthDay(rec.Month, rec.Day) {
			continue
		}
		observed := time.Date(year, rec.Month, rec.Day, 0, 0, 0, 0, time.UTC)
		if observed.Month() != month {
			continue
		}
		rec.Month, rec.Day = observed.Month(), observed.Day()
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Day < out[j].Day
	})
	return out
}
