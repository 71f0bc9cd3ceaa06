package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvBotToken, "")
	t.Setenv(EnvChatID, "")

	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NotEmpty(t, path)

	assert.Equal(t, LedgerBackendJSON, cfg.Ledger.Backend)
	assert.Equal(t, DefaultThresholds[1], cfg.Thresholds.Tier1)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.True(t, filepath.IsAbs(cfg.Source.Path), "paths are expanded")
	assert.Equal(t, DefaultLanguage, cfg.Messages.Language)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reminder.toml")
	content := `
[source]
path = "` + filepath.ToSlash(filepath.Join(dir, "people.csv")) + `"

[ledger]
backend = "SQLite"
path = "` + filepath.ToSlash(filepath.Join(dir, "ledger.db")) + `"
retention_days = 90

[thresholds]
tier1 = [0, 3]
tier2 = [0]
tier3 = []

[telegram]
bot_token = "from-file"
chat_id = "42"
request_timeout = 5

[messages]
language = "en"
timezone = "UTC"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(EnvBotToken, "from-env")
	t.Setenv(EnvChatID, "")

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, LedgerBackendSQLite, cfg.Ledger.Backend, "backend is lower-cased")
	assert.Equal(t, 90, cfg.Ledger.RetentionDays)
	assert.Equal(t, []int{0, 3}, cfg.ThresholdMap()[1])
	assert.Empty(t, cfg.ThresholdMap()[3])
	assert.Equal(t, "from-env", cfg.Telegram.BotToken, "environment wins over the file")
	assert.Equal(t, "42", cfg.Telegram.ChatID, "empty environment keeps the file value")
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_InvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[source\npath = "), 0o600))

	_, _, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrConfigParse)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"Defaults", func(*Settings) {}, ""},
		{"UnknownBackend", func(s *Settings) { s.Ledger.Backend = "redis" }, ErrLedgerBackend},
		{"NegativeThreshold", func(s *Settings) { s.Thresholds.Tier2 = []int{-1} }, ErrConfigThreshold},
		{"BadImportance", func(s *Settings) { s.Source.DefaultImportance = 4 }, ErrConfigTier},
		{"ZeroTimeout", func(s *Settings) { s.Telegram.RequestTimeout = 0 }, ErrConfigTimeout},
		{"BadTimezone", func(s *Settings) { s.Messages.Timezone = "Mars/Olympus" }, ErrConfigTimezone},
		{"BadPort", func(s *Settings) { s.Server.Port = "http" }, ErrPortNumber},
		{"PortRange", func(s *Settings) { s.Server.Port = "70000" }, ErrPortRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.normalize())
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{EnvBotToken: "  token  ", EnvChatID: "-100"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.applyEnv(lookup)

	assert.Equal(t, "token", cfg.Telegram.BotToken)
	assert.Equal(t, "-100", cfg.Telegram.ChatID)
}

func TestDefault_ThresholdsAreCopies(t *testing.T) {
	cfg := Default()
	cfg.Thresholds.Tier1[0] = 99
	assert.Equal(t, 0, DefaultThresholds[1][0], "mutating settings must not leak into the package defaults")
}
