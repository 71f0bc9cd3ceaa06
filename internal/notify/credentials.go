package notify

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// SecretLookup returns a stored secret. keyring.Get satisfies it.
type SecretLookup func(service, user string) (string, error)

// ResolveCredentials fills a missing bot token from the OS keyring.
// Values coming from the config file or the environment take precedence.
func ResolveCredentials(creds Credentials, lookup SecretLookup, logger *slog.Logger) Credentials {
	if strings.TrimSpace(creds.BotToken) != "" {
		return creds
	}
	if lookup == nil {
		lookup = keyring.Get
	}
	if logger == nil {
		logger = slog.Default()
	}

	token, err := lookup(config.KeyringService, config.KeyringUser)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug(config.ErrKeyringLookup, config.LogKeyComponent, config.CompNotifier, config.LogKeyError, err)
		}
		return creds
	}
	creds.BotToken = strings.TrimSpace(token)
	return creds
}
