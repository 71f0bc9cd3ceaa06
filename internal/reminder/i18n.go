package reminder

import (
	"embed"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog renders localized message texts.
type Catalog struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	languages []string
	logger    *slog.Logger
}

// NewCatalog loads every embedded locale and selects lang, falling back to
// the default language for missing keys.
func NewCatalog(lang string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(config.LogKeyComponent, config.CompI18n)

	bundle := i18n.NewBundle(language.MustParse(config.DefaultLanguage))
	bundle.RegisterUnmarshalFunc(config.LocaleUnmarshalToken, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal)

	c := &Catalog{bundle: bundle, logger: logger}

	entries, err := localeFS.ReadDir(config.LocaleDir)
	if err != nil {
		logger.Error(config.ErrLocalesAccess, config.LogKeyError, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LocaleFilePrefix) || !strings.HasSuffix(name, config.LocaleFileSuffix) {
			logger.Debug(config.MsgLocaleSkip, config.LogKeyFile, name)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, config.LocaleFilePrefix), config.LocaleFileSuffix)
		if langCode == "" {
			logger.Warn(config.MsgLocaleBadName, config.LogKeyFile, name)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocaleDir+"/"+name); err != nil {
			logger.Error(config.ErrLocaleLoad, config.LogKeyFile, name, config.LogKeyError, err)
			continue
		}
		c.languages = append(c.languages, langCode)
		logger.Debug(config.MsgLocaleLoaded, config.LogKeyLang, langCode, config.LogKeyFile, name)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	c.localizer = i18n.NewLocalizer(bundle, lang, config.DefaultLanguage)
	return c
}

// Languages lists the loaded locale codes.
func (c *Catalog) Languages() []string {
	return slices.Clone(c.languages)
}

// Msg translates key with optional template data. Unknown keys render as
// the key itself.
func (c *Catalog) Msg(key string, data map[string]any) string {
	if c == nil || c.localizer == nil {
		return key
	}
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		c.logger.Debug(config.MsgTransMissing, config.LogKeyKey, key, config.LogKeyError, err)
		return key
	}
	return msg
}

// MonthName returns the localized name of m.
func (c *Catalog) MonthName(m time.Month) string {
	return c.Msg(config.TKeyMonthPrefix+strconv.Itoa(int(m)), nil)
}

// Reminder renders the per-name reminder text for the given distance.
func (c *Catalog) Reminder(name string, days int) string {
	data := map[string]any{"Name": name, "Days": days}
	switch days {
	case 0:
		return c.Msg(config.TKeyReminderToday, data)
	case 1:
		return c.Msg(config.TKeyReminderTomorrow, data)
	default:
		return c.Msg(config.TKeyReminderDays, data)
	}
}

// EventSummary renders the calendar event title for name.
func (c *Catalog) EventSummary(name string) string {
	return c.Msg(config.TKeyEventSummary, map[string]any{"Name": name})
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown protects user text inside legacy Telegram Markdown.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
