package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// Source describes where birthdays are read from.
type Source struct {
	Path              string `toml:"path"`
	DefaultImportance int    `toml:"default_importance"`
}

// Ledger describes the persistent record of sent reminders.
type Ledger struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// Thresholds lists the "days before" values per importance tier.
type Thresholds struct {
	Tier1 []int `toml:"tier1"`
	Tier2 []int `toml:"tier2"`
	Tier3 []int `toml:"tier3"`
}

// Telegram contains the chat API credentials and transport settings.
type Telegram struct {
	APIURL         string `toml:"api_url"`
	BotToken       string `toml:"bot_token"`
	ChatID         string `toml:"chat_id"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains the log file location and verbosity.
type Logging struct {
	Dir   string `toml:"dir"`
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Messages controls message language and the calendar day boundary.
type Messages struct {
	Language string `toml:"language"`
	Timezone string `toml:"timezone"`
}

// Server contains settings for the calendar feed.
type Server struct {
	Port           string `toml:"port"`
	RefreshMinutes int    `toml:"refresh_minutes"`
	Alarm          string `toml:"alarm"`
}

// Settings is the full runtime configuration.
type Settings struct {
	Source     Source     `toml:"source"`
	Ledger     Ledger     `toml:"ledger"`
	Thresholds Thresholds `toml:"thresholds"`
	Telegram   Telegram   `toml:"telegram"`
	Logging    Logging    `toml:"logging"`
	Messages   Messages   `toml:"messages"`
	Server     Server     `toml:"server"`
}

// Default returns Settings populated with repository defaults.
func Default() Settings {
	return Settings{
		Source: Source{
			Path:              DefaultSourcePath,
			DefaultImportance: DefaultImportance,
		},
		Ledger: Ledger{
			Backend: DefaultLedgerBackend,
			Path:    DefaultLedgerPath,
		},
		Thresholds: Thresholds{
			Tier1: append([]int(nil), DefaultThresholds[1]...),
			Tier2: append([]int(nil), DefaultThresholds[2]...),
			Tier3: append([]int(nil), DefaultThresholds[3]...),
		},
		Telegram: Telegram{
			APIURL:         DefaultTelegramAPI,
			RequestTimeout: DefaultRequestTimeoutSec,
		},
		Logging: Logging{
			Dir:   DefaultLogDir,
			File:  DefaultLogFile,
			Level: DefaultLogLevel,
		},
		Messages: Messages{
			Language: DefaultLanguage,
		},
		Server: Server{
			Port:           DefaultServerPort,
			RefreshMinutes: DefaultRefreshMin,
		},
	}
}

// Load reads the TOML file at path (or the default location when empty),
// applies environment overrides and validates the result. A missing file is
// not an error: defaults are returned and exists is false.
func Load(path string) (*Settings, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("%s: %w", ErrConfigOpen, err)
		}
		defer func() { _ = file.Close() }()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("%s: %w", ErrConfigParse, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolved, exists, nil
}

// applyEnv lets the environment override chat credentials.
func (s *Settings) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBotToken); ok && strings.TrimSpace(v) != "" {
		s.Telegram.BotToken = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvChatID); ok && strings.TrimSpace(v) != "" {
		s.Telegram.ChatID = strings.TrimSpace(v)
	}
}

func (s *Settings) normalize() error {
	var err error
	if s.Source.Path, err = expandPath(strings.TrimSpace(s.Source.Path)); err != nil {
		return err
	}
	if s.Ledger.Path, err = expandPath(strings.TrimSpace(s.Ledger.Path)); err != nil {
		return err
	}
	if s.Logging.Dir, err = expandPath(strings.TrimSpace(s.Logging.Dir)); err != nil {
		return err
	}
	s.Ledger.Backend = strings.ToLower(strings.TrimSpace(s.Ledger.Backend))
	if s.Ledger.Backend == "" {
		s.Ledger.Backend = DefaultLedgerBackend
	}
	s.Telegram.APIURL = strings.TrimRight(strings.TrimSpace(s.Telegram.APIURL), "/")
	if s.Telegram.APIURL == "" {
		s.Telegram.APIURL = DefaultTelegramAPI
	}
	if s.Logging.File == "" {
		s.Logging.File = DefaultLogFile
	}
	if s.Messages.Language == "" {
		s.Messages.Language = DefaultLanguage
	}
	if s.Source.DefaultImportance == 0 {
		s.Source.DefaultImportance = DefaultImportance
	}
	if s.Server.RefreshMinutes <= 0 {
		s.Server.RefreshMinutes = DefaultRefreshMin
	}
	return nil
}

// Validate checks the settings for values the application cannot run with.
func (s *Settings) Validate() error {
	if s.Source.Path == "" || s.Ledger.Path == "" {
		return errors.New(ErrConfigPath)
	}
	switch s.Ledger.Backend {
	case LedgerBackendJSON, LedgerBackendSQLite:
	default:
		return fmt.Errorf("%s: %q", ErrLedgerBackend, s.Ledger.Backend)
	}
	if s.Source.DefaultImportance < MinImportance || s.Source.DefaultImportance > MaxImportance {
		return fmt.Errorf("%s: %d", ErrConfigTier, s.Source.DefaultImportance)
	}
	for tier, values := range s.ThresholdMap() {
		for _, v := range values {
			if v < 0 {
				return fmt.Errorf("%s: tier %d has %d", ErrConfigThreshold, tier, v)
			}
		}
	}
	if s.Telegram.RequestTimeout <= 0 {
		return errors.New(ErrConfigTimeout)
	}
	if _, err := language.Parse(s.Messages.Language); err != nil {
		return fmt.Errorf("%s: %w", ErrConfigLanguage, err)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return ValidatePort(s.Server.Port)
}

// ThresholdMap returns the tier to thresholds mapping used by the selector.
func (s *Settings) ThresholdMap() map[int][]int {
	return map[int][]int{
		1: s.Thresholds.Tier1,
		2: s.Thresholds.Tier2,
		3: s.Thresholds.Tier3,
	}
}

// RequestTimeout returns the chat API timeout as a duration.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.Telegram.RequestTimeout) * time.Second
}

// RefreshInterval returns how often the calendar feed is rebuilt.
func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.Server.RefreshMinutes) * time.Minute
}

// Location returns the timezone that decides what "today" is.
// An empty timezone means the process local time.
func (s *Settings) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Messages.Timezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigTimezone, err)
	}
	return loc, nil
}

// LogFilePath returns the absolute path of the run log.
func (s *Settings) LogFilePath() string {
	return filepath.Join(s.Logging.Dir, s.Logging.File)
}

// ValidatePort checks that a server port is a number in the TCP range.
func ValidatePort(port string) error {
	port = strings.TrimSpace(port)
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultConfigRel
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("%s: %w", ErrConfigStat, err)
	}
	if info.IsDir() {
		return expanded, false, nil
	}
	return expanded, true, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%s: %w", ErrHomeDir, err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrAbsPath, err)
	}
	return absolute, nil
}
