package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tartampluch/birthday-reminder/internal/config"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS claims (
    bucket     TEXT    NOT NULL,
    name       TEXT    NOT NULL,
    threshold  INTEGER NOT NULL,
    claimed_at TEXT    NOT NULL,
    PRIMARY KEY (bucket, name, threshold)
)`

// SQLiteLedger implements Ledger on a SQLite database with one row per claim.
type SQLiteLedger struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens or creates the ledger database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteLedger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLedgerOpen, err)
	}
	// One writer per run; a single connection keeps pragmas in effect.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: apply pragma %q: %w", config.ErrLedgerOpen, pragma, execErr)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrLedgerOpen, err)
	}

	return &SQLiteLedger{
		db:     db,
		path:   path,
		logger: logger.With(config.LogKeyComponent, config.CompLedger, config.LogKeyBackend, config.LedgerBackendSQLite),
	}, nil
}

// Claim implements Ledger.
// A failed write reports ok with ErrLedgerWrite, so the reminder still goes
// out and may repeat on the next run.
func (l *SQLiteLedger) Claim(ctx context.Context, key Key, name string, threshold int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	var (
		res sql.Result
		err error
	)
	switch key.Kind {
	case Monthly:
		res, err = l.db.ExecContext(ctx,
			`INSERT INTO claims (bucket, name, threshold, claimed_at)
             SELECT ?, ?, ?, ?
             WHERE NOT EXISTS (SELECT 1 FROM claims WHERE bucket = ? AND name = ?)`,
			key.Value, name, threshold, now, key.Value, name)
	default:
		res, err = l.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO claims (bucket, name, threshold, claimed_at) VALUES (?, ?, ?, ?)`,
			key.Value, name, threshold, now)
	}
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return true, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	return n > 0, nil
}

// Prune implements Ledger.
func (l *SQLiteLedger) Prune(ctx context.Context, before time.Time) (int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT DISTINCT bucket FROM claims`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrLedgerPrune, err)
	}
	var expired []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("%s: %w", config.ErrLedgerPrune, err)
		}
		if key, err := ParseKey(raw); err == nil && key.expired(before) {
			expired = append(expired, raw)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fmt.Errorf("%s: %w", config.ErrLedgerPrune, err)
	}
	_ = rows.Close()

	for _, bucket := range expired {
		if _, err := l.db.ExecContext(ctx, `DELETE FROM claims WHERE bucket = ?`, bucket); err != nil {
			return 0, fmt.Errorf("%s: %w", config.ErrLedgerPrune, err)
		}
	}
	if len(expired) > 0 {
		l.logger.Info(config.MsgLedgerPruned, config.LogKeyCount, len(expired))
	}
	return len(expired), nil
}

// Close closes the database.
func (l *SQLiteLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
