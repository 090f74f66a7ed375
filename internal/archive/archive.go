// Package archive persists delivered log lines to SQLite so they survive
// daemon restarts and can be queried later over IPC.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"logmon/internal/config"
	"logmon/internal/monitor"
)

// Store manages line persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the archive database under the log dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.ArchivePath())
}

// OpenPath opens the archive at an explicit database path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seq INTEGER NOT NULL,
    observed_at TEXT NOT NULL,
    text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lines_observed_at ON lines(observed_at);
`
	if _, err := s.execWithRetry(ctx, schema); err != nil {
		return fmt.Errorf("init archive schema: %w", err)
	}
	return nil
}

// Path reports the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Append records one delivered line. Implements monitor.Sink, so a Store can
// be attached straight to the hub.
func (s *Store) Append(evt monitor.Event) {
	_ = s.AppendContext(context.Background(), evt)
}

// AppendContext records one delivered line and surfaces the write error.
func (s *Store) AppendContext(ctx context.Context, evt monitor.Event) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO lines (seq, observed_at, text) VALUES (?, ?, ?)`,
		evt.Seq, evt.Time.UTC().Format(time.RFC3339Nano), evt.Text)
	if err != nil {
		return fmt.Errorf("append line: %w", err)
	}
	return nil
}

// Recent returns the newest limit lines, oldest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]monitor.Event, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, observed_at, text FROM lines ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent lines: %w", err)
	}
	defer rows.Close()

	var out []monitor.Event
	for rows.Next() {
		var (
			evt     monitor.Event
			stamped string
		)
		if err := rows.Scan(&evt.Seq, &stamped, &evt.Text); err != nil {
			return nil, fmt.Errorf("scan archived line: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, stamped); parseErr == nil {
			evt.Time = ts
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived lines: %w", err)
	}
	// Reverse into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Count reports how many lines the archive holds.
func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lines`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count archived lines: %w", err)
	}
	return count, nil
}

// Prune deletes lines observed before the retention horizon and reports how
// many were removed.
func (s *Store) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	horizon := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ensureContext(ctx),
		`DELETE FROM lines WHERE observed_at < ?`, horizon)
	if err != nil {
		return 0, fmt.Errorf("prune archive: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return removed, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
