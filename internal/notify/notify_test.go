package notify_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/notify"
)

const testToken = "123456:ABC-secret"

var testCreds = notify.Credentials{BotToken: testToken, ChatID: "-10042"}

// TestTelegramNotifier_Send_Success checks the request shape sent to the Bot API.
func TestTelegramNotifier_Send_Success(t *testing.T) {
	text := "🎉 ¡Hoy es el cumpleaños de Ana! 🎂✨"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot"+testToken+"/sendMessage", r.URL.Path)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		assert.Equal(t, config.MimeFormURLEncoded, r.Header.Get(config.HeaderContentType))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "-10042", r.PostForm.Get("chat_id"))
		assert.Equal(t, text, r.PostForm.Get("text"))
		assert.Equal(t, "Markdown", r.PostForm.Get("parse_mode"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	n := notify.NewTelegramNotifier(ts.URL+"/", testCreds, time.Second, nil)
	require.NoError(t, n.Send(context.Background(), text))
}

// TestTelegramNotifier_Send_Errors verifies non-2xx handling.
func TestTelegramNotifier_Send_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"BadRequest", http.StatusBadRequest, `{"ok":false,"description":"Bad Request: chat not found"}`},
		{"Unauthorized", http.StatusUnauthorized, `{"ok":false}`},
		{"ServerError", http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			err := notify.NewTelegramNotifier(ts.URL, testCreds, time.Second, nil).Send(context.Background(), "hi")

			require.Error(t, err)
			assert.ErrorIs(t, err, notify.ErrNotifier)
			assert.Contains(t, err.Error(), strconv.Itoa(tt.statusCode))
			assert.Contains(t, err.Error(), tt.body)
			assert.NotContains(t, err.Error(), testToken)
		})
	}
}

func TestTelegramNotifier_Send_BodyIsBounded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", config.MaxErrorBodySize*4)))
	}))
	defer ts.Close()

	err := notify.NewTelegramNotifier(ts.URL, testCreds, time.Second, nil).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Less(t, len(err.Error()), config.MaxErrorBodySize+200)
}

// TestTelegramNotifier_Send_NetworkError makes sure the token does not leak
// through transport errors, which quote the request URL.
func TestTelegramNotifier_Send_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := notify.NewTelegramNotifier(url, testCreds, time.Second, nil).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, notify.ErrNotifier)
	assert.NotContains(t, err.Error(), testToken)
}

func TestTelegramNotifier_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	err := notify.NewTelegramNotifier(ts.URL, testCreds, 50*time.Millisecond, nil).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, notify.ErrNotifier)
}

func TestTelegramNotifier_RejectsScheme(t *testing.T) {
	err := notify.NewTelegramNotifier("ftp://example.com", testCreds, time.Second, nil).Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrProtocol)
}

func TestNew_SelectsImplementation(t *testing.T) {
	assert.IsType(t, notify.NoopNotifier{}, notify.New(config.DefaultTelegramAPI, notify.Credentials{BotToken: "x"}, time.Second, nil))
	assert.IsType(t, notify.NoopNotifier{}, notify.New(config.DefaultTelegramAPI, notify.Credentials{ChatID: "1"}, time.Second, nil))
	assert.IsType(t, &notify.TelegramNotifier{}, notify.New(config.DefaultTelegramAPI, testCreds, time.Second, nil))
}

func TestNoopNotifier(t *testing.T) {
	assert.NoError(t, notify.NoopNotifier{}.Send(context.Background(), "hi"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, notify.NoopNotifier{}.Send(ctx, "hi"), context.Canceled)
}

// -----------------------------------------------------------------------------
// Credentials
// -----------------------------------------------------------------------------

func TestResolveCredentials(t *testing.T) {
	lookupCalls := 0
	lookup := func(service, user string) (string, error) {
		lookupCalls++
		assert.Equal(t, config.KeyringService, service)
		assert.Equal(t, config.KeyringUser, user)
		return " from-keyring ", nil
	}

	got := notify.ResolveCredentials(notify.Credentials{BotToken: "from-config", ChatID: "1"}, lookup, nil)
	assert.Equal(t, "from-config", got.BotToken)
	assert.Equal(t, 0, lookupCalls, "keyring is only a fallback")

	got = notify.ResolveCredentials(notify.Credentials{ChatID: "1"}, lookup, nil)
	assert.Equal(t, "from-keyring", got.BotToken)
	assert.Equal(t, "1", got.ChatID)

	failing := func(string, string) (string, error) { return "", errors.New("no dbus") }
	got = notify.ResolveCredentials(notify.Credentials{ChatID: "1"}, failing, nil)
	assert.Empty(t, got.BotToken)
}

func TestResolveCredentials_MockKeyring(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, config.KeyringUser, "stored-token"))

	got := notify.ResolveCredentials(notify.Credentials{ChatID: "1"}, nil, nil)
	assert.Equal(t, "stored-token", got.BotToken)
}
