package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

// Ledger reserves (bucket, name, threshold) triples.
//
// Claim returns true the first time a triple is claimed and false afterwards.
// For Monthly keys the threshold is stored but ignored when checking: one
// claim per name and month. When the claim was granted but could not be
// persisted, Claim returns true together with an error wrapping ErrLedgerWrite.
type Ledger interface {
	Claim(ctx context.Context, key Key, name string, threshold int) (bool, error)

	// Prune drops buckets that end before the given day and reports how many.
	Prune(ctx context.Context, before time.Time) (int, error)

	Close() error
}

// DocumentLedger implements Ledger on top of a Store holding the whole
// document. Every claim reloads the document, so edits made between runs
// are honored.
type DocumentLedger struct {
	store  Store
	logger *slog.Logger
}

// NewDocumentLedger wraps a Store. A nil logger falls back to slog.Default().
func NewDocumentLedger(store Store, logger *slog.Logger) *DocumentLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentLedger{
		store:  store,
		logger: logger.With(config.LogKeyComponent, config.CompLedger),
	}
}

// Claim implements Ledger.
func (l *DocumentLedger) Claim(ctx context.Context, key Key, name string, threshold int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	doc := l.load()
	if !doc.claim(key, name, threshold) {
		return false, nil
	}

	if err := l.store.Save(doc); err != nil {
		return true, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	return true, nil
}

// Prune implements Ledger.
func (l *DocumentLedger) Prune(ctx context.Context, before time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	doc := l.load()
	removed := doc.prune(before)
	if removed == 0 {
		return 0, nil
	}
	if err := l.store.Save(doc); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	l.logger.Info(config.MsgLedgerPruned, config.LogKeyCount, removed)
	return removed, nil
}

// Close implements Ledger. Documents hold no open resources.
func (l *DocumentLedger) Close() error {
	return nil
}

// load returns the stored document, or an empty one when it is unreadable.
func (l *DocumentLedger) load() Document {
	doc, err := l.store.Load()
	if err != nil {
		if !errors.Is(err, ErrLedgerCorrupt) {
			l.logger.Error(config.ErrLedgerRead, config.LogKeyError, err)
		} else {
			l.logger.Warn(config.MsgLedgerCorrupt, config.LogKeyError, err)
		}
		return Document{}
	}
	if doc == nil {
		return Document{}
	}
	return doc
}

// Open builds the ledger selected by backend ("json" or "sqlite") at path.
func Open(ctx context.Context, backend, path string, logger *slog.Logger) (Ledger, error) {
	switch backend {
	case config.LedgerBackendJSON, "":
		return NewDocumentLedger(NewFileStore(path), logger), nil
	case config.LedgerBackendSQLite:
		return OpenSQLite(ctx, path, logger)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrLedgerBackend, backend)
	}
}
