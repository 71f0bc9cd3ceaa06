package reminder_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/reminder"
)

// TestI18nIntegrity ensures every translation key used in code exists in
// every locale file.
func TestI18nIntegrity(t *testing.T) {
	keys := []string{
		config.TKeyReminderToday,
		config.TKeyReminderTomorrow,
		config.TKeyReminderDays,
		config.TKeyDigestHeader,
		config.TKeyDigestLine,
		config.TKeyTestMessage,
		config.TKeyEventSummary,
		config.TKeyColName,
		config.TKeyColDate,
		config.TKeyColDays,
		config.TKeyColImportance,
	}
	for m := 1; m <= 12; m++ {
		keys = append(keys, config.TKeyMonthPrefix+strconv.Itoa(m))
	}

	files, err := filepath.Glob(filepath.Join(config.LocaleDir, config.LocaleFilePrefix+"*"+config.LocaleFileSuffix))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		content, err := os.ReadFile(path)
		require.NoError(t, err)

		var messages map[string]string
		require.NoError(t, jsoniter.Unmarshal(content, &messages), "%s must be valid JSON", path)

		for _, k := range keys {
			assert.Contains(t, messages, k, "key %q missing in %s", k, path)
		}
		for k := range messages {
			assert.Contains(t, keys, k, "key %q in %s is not used", k, path)
		}
	}
}

func TestCatalog_Languages(t *testing.T) {
	c := reminder.NewCatalog("", nil)
	assert.ElementsMatch(t, []string{"en", "es"}, c.Languages())
}

func TestCatalog_Reminder(t *testing.T) {
	es := reminder.NewCatalog("es", nil)
	assert.Equal(t, "🎉 ¡Hoy es el cumpleaños de Ana! 🎂✨", es.Reminder("Ana", 0))
	assert.Equal(t, "🎉 ¡Mañana es el cumpleaños de Ana! 🎁", es.Reminder("Ana", 1))
	assert.Equal(t, "🎉 ¡Ana cumple años en 30 días! 🎈", es.Reminder("Ana", 30))

	en := reminder.NewCatalog("en", nil)
	assert.Equal(t, "🎉 Tomorrow is Ana's birthday! 🎁", en.Reminder("Ana", 1))
}

func TestCatalog_FallbacksToDefaultLanguage(t *testing.T) {
	c := reminder.NewCatalog("fr", nil)
	assert.Equal(t, "mayo", c.MonthName(time.May))
	assert.Equal(t, "unknown_key", c.Msg("unknown_key", nil))
}

func TestCatalog_EventSummary(t *testing.T) {
	assert.Equal(t, "Cumpleaños de Leo", reminder.NewCatalog("es", nil).EventSummary("Leo"))
}

func TestEscapeMarkdown(t *testing.T) {
	tests := map[string]string{
		"Ana":        "Ana",
		"snake_case": `snake\_case`,
		"*bold*":     `\*bold\*`,
		"[link]":     `\[link]`,
		"`code`":     "\\`code\\`",
	}
	for in, want := range tests {
		assert.Equal(t, want, reminder.EscapeMarkdown(in), in)
	}
}
