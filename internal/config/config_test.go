package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/birthday-reminder/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"DigestName", config.DigestName},
		{"ICalProdid", config.ICalProdid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestDefaults_Sanity checks that default values make sense logically.
func TestDefaults_Sanity(t *testing.T) {
	assert.Equal(t, 2000, config.DefaultLeapYear, "Default leap year must be 2000 for consistency")
	assert.Equal(t, 10, config.DefaultRequestTimeoutSec)
	assert.Equal(t, -1, config.DigestSentinel)

	for tier := config.MinImportance; tier <= config.MaxImportance; tier++ {
		assert.NotEmpty(t, config.DefaultThresholds[tier], "tier %d needs thresholds", tier)
		assert.Contains(t, config.DefaultThresholds[tier], 0, "every tier fires on the birthday itself")
	}
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Birthday-Reminder/"))
}

// TestKeyLayouts ensures ledger keys keep the on-disk format of existing ledgers.
func TestKeyLayouts(t *testing.T) {
	day := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01", day.Format(config.DailyKeyLayout))
	assert.Equal(t, "2024-05", day.Format(config.MonthlyKeyLayout))
	assert.Equal(t, "05/01", day.Format(config.MonthDayLayout))
}

// TestTimeoutsAndLimits ensures that operational constraints are reasonable.
func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.ShutdownTimeout, 0*time.Second)
	assert.Greater(t, config.MaxErrorBodySize, 0)
	assert.Less(t, config.MaxErrorBodySize, 64*1024, "error bodies are only logged, keep them small")
}
