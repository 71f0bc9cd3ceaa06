package ledger

import (
	"fmt"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// Kind distinguishes the two bucket scopes.
type Kind int

const (
	// Daily buckets hold per-name threshold sets for one calendar date.
	Daily Kind = iota
	// Monthly buckets hold at most one claim per name for a year-month.
	Monthly
)

// Key identifies a ledger bucket.
type Key struct {
	Kind  Kind
	Value string
}

// DailyKey returns the bucket for the calendar date of t (2006-01-02).
func DailyKey(t time.Time) Key {
	return Key{Kind: Daily, Value: t.Format(config.DailyKeyLayout)}
}

// MonthlyKey returns the bucket for the year-month of t (2006-01).
func MonthlyKey(t time.Time) Key {
	return Key{Kind: Monthly, Value: t.Format(config.MonthlyKeyLayout)}
}

// ParseKey recognizes a stored bucket key.
func ParseKey(s string) (Key, error) {
	if _, err := time.Parse(config.DailyKeyLayout, s); err == nil {
		return Key{Kind: Daily, Value: s}, nil
	}
	if _, err := time.Parse(config.MonthlyKeyLayout, s); err == nil {
		return Key{Kind: Monthly, Value: s}, nil
	}
	return Key{}, fmt.Errorf("%s: %q", config.ErrLedgerKey, s)
}

func (k Key) String() string {
	return k.Value
}

// expired reports whether the whole bucket lies before the given instant.
// Only the date part of before is considered.
func (k Key) expired(before time.Time) bool {
	y, m, d := before.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	switch k.Kind {
	case Daily:
		t, err := time.Parse(config.DailyKeyLayout, k.Value)
		return err == nil && t.Before(cutoff)
	case Monthly:
		t, err := time.Parse(config.MonthlyKeyLayout, k.Value)
		return err == nil && !t.AddDate(0, 1, 0).After(cutoff)
	}
	return false
}
