package main

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/engine"
	"github.com/tartampluch/birthday-reminder/internal/notify"
	"github.com/tartampluch/birthday-reminder/internal/reminder"
)

// commandContext carries the state shared by every subcommand: flags, the
// loaded settings and the run logger.
type commandContext struct {
	configFlag  string
	debugFlag   bool
	versionFlag bool

	settings *config.Settings
	logger   *slog.Logger
	runID    string
	closers  []io.Closer

	// clock and secrets are replaced in tests.
	clock   engine.Clock
	secrets notify.SecretLookup
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// setup loads the configuration and installs the run logger. Console logs
// go to stdout unless the command asks for stderr.
func (c *commandContext) setup(cmd *cobra.Command) error {
	settings, path, found, err := config.Load(strings.TrimSpace(c.configFlag))
	if err != nil {
		return err
	}
	c.settings = settings
	c.runID = uuid.NewString()

	console := cmd.OutOrStdout()
	if cmd.Annotations[config.AnnotationConsole] == config.ConsoleStderr {
		console = cmd.ErrOrStderr()
	}

	logger, closer := setupLogging(settings, c.debugFlag, console)
	if closer != nil {
		c.closers = append(c.closers, closer)
	}
	c.logger = logger.With(config.LogKeyRunID, c.runID)
	slog.SetDefault(c.logger)

	logStartupInfo(c.logger)
	if found {
		c.logger.Info(config.MsgConfigLoaded, config.LogKeyComponent, config.CompConfig, config.LogKeyPath, path)
	} else {
		c.logger.Info(config.MsgConfigDefault, config.LogKeyComponent, config.CompConfig, config.LogKeyPath, path)
	}

	if c.clock == nil {
		loc, err := settings.Location()
		if err != nil {
			return err
		}
		c.clock = engine.RealClock{Location: loc}
	}
	return nil
}

func (c *commandContext) close() {
	for _, cl := range c.closers {
		_ = cl.Close()
	}
	c.closers = nil
}

func (c *commandContext) source() engine.Source {
	return engine.NewFileSource(c.settings.Source.Path, c.settings.Source.DefaultImportance, c.logger)
}

func (c *commandContext) catalog() *reminder.Catalog {
	return reminder.NewCatalog(c.settings.Messages.Language, c.logger)
}

func (c *commandContext) notifier() notify.Notifier {
	creds := notify.ResolveCredentials(notify.Credentials{
		BotToken: c.settings.Telegram.BotToken,
		ChatID:   c.settings.Telegram.ChatID,
	}, c.secrets, c.logger)
	return notify.New(c.settings.Telegram.APIURL, creds, c.settings.RequestTimeout(), c.logger)
}

func (c *commandContext) calendarBuilder(cat *reminder.Catalog) *engine.CalendarBuilder {
	return &engine.CalendarBuilder{
		Clock:         c.clock,
		Logger:        c.logger,
		FormatSummary: cat.EventSummary,
	}
}

// today returns the current instant in the configured timezone.
func (c *commandContext) today() time.Time {
	return c.clock.Now()
}

// stderrLogged marks a command whose stdout is reserved for its output.
func stderrLogged(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[config.AnnotationConsole] = config.ConsoleStderr
	return cmd
}
