package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNextOccurrence verifies the core temporal logic of the application.
// It covers standard dates, boundaries (end of year), and leap year complexities.
func TestNextOccurrence(t *testing.T) {
	// Reference "Now": June 15th, 2025 (Non-Leap Year)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		month        time.Month
		day          int
		expectedDate time.Time
		expectedDays int
	}{
		{"Birthday in the past (this year)", time.January, 1, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 200},
		{"Birthday in the future (this year)", time.December, 31, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 199},
		{"Birthday is Today", time.June, 15, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 0},
		{"Birthday is Tomorrow", time.June, 16, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), 1},
		{"Birthday was Yesterday", time.June, 14, time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), 364},
		{"Leapling - Non-Leap Year (Feb 29 -> Mar 1)", time.February, 29, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 259},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := nextOccurrence(now, tt.month, tt.day)
			assert.Equal(t, tt.expectedDate, next)

			days, err := DaysUntil(now, tt.month, tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedDays, days)
		})
	}
}

// TestNextOccurrence_LeapYearContext verifies behavior when the *current* year is a leap year.
func TestNextOccurrence_LeapYearContext(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	next := nextOccurrence(now, time.February, 29)

	expected := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, expected, next, "In a leap year, the birthday should be Feb 29, not Mar 1")
}

// TestDaysUntil_Property checks every valid month/day against several reference days:
// the result is never negative and today plus the result lands on the next occurrence.
func TestDaysUntil_Property(t *testing.T) {
	references := []time.Time{
		time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 29, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
	}

	for _, today := range references {
		for m := time.January; m <= time.December; m++ {
			for d := 1; d <= 31; d++ {
				if !ValidMonthDay(m, d) {
					continue
				}
				days, err := DaysUntil(today, m, d)
				require.NoError(t, err)
				require.GreaterOrEqual(t, days, 0)
				require.Less(t, days, 367)

				got := today.AddDate(0, 0, days)
				want := nextOccurrence(today, m, d)
				gy, gm, gd := got.Date()
				wy, wm, wd := want.Date()
				require.Equalf(t, [3]int{wy, int(wm), wd}, [3]int{gy, int(gm), gd},
					"today=%s month=%d day=%d", today.Format(time.DateOnly), m, d)
			}
		}
	}
}

func TestDaysUntil_InvalidDate(t *testing.T) {
	today := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		month time.Month
		day   int
	}{
		{time.April, 31},
		{time.February, 30},
		{time.June, 0},
		{time.Month(13), 1},
	}

	for _, tt := range tests {
		_, err := DaysUntil(today, tt.month, tt.day)
		require.Error(t, err)

		var invalid *InvalidDateError
		assert.True(t, errors.As(err, &invalid))
		assert.ErrorIs(t, err, ErrInvalidDate)
		assert.Equal(t, tt.month, invalid.Month)
	}
}

// TestDaysBetween_DST ensures a day that is 23 or 25 hours long still counts as one day.
func TestDaysBetween_DST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skip("timezone database not available")
	}

	// Spring forward happens on 2025-03-30.
	today := time.Date(2025, 3, 29, 23, 0, 0, 0, loc)
	days, err := DaysUntil(today, time.March, 31)
	require.NoError(t, err)
	assert.Equal(t, 2, days)
}

func TestParseMonthDay(t *testing.T) {
	tests := []struct {
		value   string
		month   time.Month
		day     int
		wantErr bool
	}{
		{"05/10", time.May, 10, false},
		{" 5/3 ", time.May, 3, false},
		{"12/31", time.December, 31, false},
		{"04/31", time.April, 31, false}, // calendar check happens later
		{"13/01", 0, 0, true},
		{"00/10", 0, 0, true},
		{"05-10", 0, 0, true},
		{"Fecha", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			m, d, err := parseMonthDay(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRowMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.month, m)
			assert.Equal(t, tt.day, d)
		})
	}
}

func TestParseDate_VCardFormats(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		month   time.Month
		day     int
		wantErr bool
	}{
		{"ISO8601 Standard", "1990-10-25", time.October, 25, false},
		{"Basic Format", "19901025", time.October, 25, false},
		{"RFC3339", "1990-10-25T00:00:00Z", time.October, 25, false},
		{"Truncated (Month-Day)", "--10-25", time.October, 25, false},
		{"Truncated Basic", "--1025", time.October, 25, false},
		{"Truncated Leap Day", "--02-29", time.February, 29, false},
		{"Garbage Data", "not-a-date", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.month, got.Month())
			assert.Equal(t, tt.day, got.Day())
		})
	}
}

func TestNormalizeName(t *testing.T) {
	decomposed := "Jose\u0301"
	assert.Equal(t, "Jos\u00e9", normalizeName("  "+decomposed+" "))
}
