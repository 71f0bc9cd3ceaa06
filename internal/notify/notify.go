// Package notify delivers reminder texts to a chat channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// ErrNotifier wraps every delivery failure.
var ErrNotifier = errors.New(config.ErrNotifier)

// Notifier sends one text message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Credentials identify the bot and the destination chat.
type Credentials struct {
	BotToken string
	ChatID   string
}

// Complete reports whether both values are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.BotToken) != "" && strings.TrimSpace(c.ChatID) != ""
}

// New returns a TelegramNotifier when the credentials are complete and a
// NoopNotifier otherwise.
func New(apiURL string, creds Credentials, timeout time.Duration, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if !creds.Complete() {
		logger.Warn(config.MsgNotifierNoop, config.LogKeyComponent, config.CompNotifier)
		return NoopNotifier{Logger: logger}
	}
	return NewTelegramNotifier(apiURL, creds, timeout, logger)
}

// TelegramNotifier posts messages through the Telegram Bot API sendMessage
// method using legacy Markdown.
type TelegramNotifier struct {
	Client *http.Client

	apiURL string
	creds  Credentials
	logger *slog.Logger
}

// NewTelegramNotifier creates a notifier with a bounded HTTP client.
func NewTelegramNotifier(apiURL string, creds Credentials, timeout time.Duration, logger *slog.Logger) *TelegramNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultRequestTimeoutSec) * time.Second
	}
	return &TelegramNotifier{
		Client: &http.Client{Timeout: timeout},
		apiURL: strings.TrimRight(apiURL, "/"),
		creds:  creds,
		logger: logger.With(config.LogKeyComponent, config.CompNotifier),
	}
}

// Send implements Notifier.
// The request URL embeds the bot token, so it is never logged and network
// errors are reported without it.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf(config.TelegramPathFormat, n.apiURL, n.creds.BotToken)
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotifier, config.ErrInvalidURL)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return fmt.Errorf("%w: %s: %s", ErrNotifier, config.ErrProtocol, u.Scheme)
	}

	form := url.Values{}
	form.Set(config.TelegramFieldChatID, n.creds.ChatID)
	form.Set(config.TelegramFieldText, text)
	form.Set(config.TelegramFieldParse, config.TelegramParseMode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotifier, config.ErrInvalidURL)
	}
	req.Header.Set(config.HeaderContentType, config.MimeFormURLEncoded)
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	start := time.Now()
	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotifier, config.ErrNotifierNetwork, redact(err, n.creds.BotToken))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, config.MaxErrorBodySize))
		n.logger.Warn(config.ErrNotifierStatus, config.LogKeyStatus, resp.StatusCode)
		return fmt.Errorf("%w: %s: %d: %s", ErrNotifier, config.ErrNotifierStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, config.MaxErrorBodySize))

	n.logger.Debug(config.MsgMessageSent,
		config.LogKeyStatus, resp.StatusCode,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// redact removes the token from error texts produced by net/http, which
// quote the full request URL.
func redact(err error, token string) string {
	msg := err.Error()
	if token == "" {
		return msg
	}
	return strings.ReplaceAll(msg, token, "***")
}

// NoopNotifier drops every message. It is used when no chat is configured.
type NoopNotifier struct {
	Logger *slog.Logger
}

// Send implements Notifier.
func (n NoopNotifier) Send(ctx context.Context, text string) error {
	if n.Logger != nil {
		n.Logger.Debug(config.MsgNotifierNoop, config.LogKeyComponent, config.CompNotifier, config.LogKeySizeBytes, len(text))
	}
	return ctx.Err()
}
