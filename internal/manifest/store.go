package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Kind classifies a mirrored file.
type Kind string

const (
	KindIsotherm       Kind = "isotherm"
	KindAdsorbent      Kind = "adsorbent"
	KindAdsorbate      Kind = "adsorbate"
	KindBibliography   Kind = "bibliography"
	KindNovelAdsorbate Kind = "novel_adsorbate"
)

// Entry is one mirrored file.
type Entry struct {
	Kind      Kind
	Key       string
	DOI       string
	Path      string
	SHA256    string
	FetchedAt time.Time
}

// KindSummary aggregates the entries of one kind.
type KindSummary struct {
	Kind        Kind
	Count       int
	DOIs        int
	LatestFetch time.Time
}

// Store persists manifest entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// timeLayout is fixed width so fetched_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

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

// Open initializes or connects to the manifest database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("manifest path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces the entry identified by its kind and key.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.Kind == "" || strings.TrimSpace(entry.Key) == "" {
		return errors.New("manifest entry requires kind and key")
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
INSERT INTO files (kind, key, doi, path, sha256, fetched_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(kind, key) DO UPDATE SET
    doi = excluded.doi,
    path = excluded.path,
    sha256 = excluded.sha256,
    fetched_at = excluded.fetched_at`,
			string(entry.Kind), entry.Key, entry.DOI, entry.Path, entry.SHA256,
			entry.FetchedAt.UTC().Format(timeLayout))
		return err
	})
}

// List returns the entries of one kind ordered by key. An empty kind lists
// every entry.
func (s *Store) List(ctx context.Context, kind Kind) ([]Entry, error) {
	query := "SELECT kind, key, doi, path, sha256, fetched_at FROM files"
	var args []any
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY kind, key"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list manifest: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			kindStr string
			fetched string
		)
		if err := rows.Scan(&kindStr, &entry.Key, &entry.DOI, &entry.Path, &entry.SHA256, &fetched); err != nil {
			return nil, fmt.Errorf("scan manifest row: %w", err)
		}
		entry.Kind = Kind(kindStr)
		entry.FetchedAt = parseTime(fetched)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Summary returns per-kind counts ordered by kind.
func (s *Store) Summary(ctx context.Context) ([]KindSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT kind, COUNT(1), COUNT(DISTINCT NULLIF(doi, '')), MAX(fetched_at)
FROM files
GROUP BY kind
ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("summarize manifest: %w", err)
	}
	defer rows.Close()

	var out []KindSummary
	for rows.Next() {
		var (
			summary KindSummary
			kindStr string
			latest  sql.NullString
		)
		if err := rows.Scan(&kindStr, &summary.Count, &summary.DOIs, &latest); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary.Kind = Kind(kindStr)
		if latest.Valid {
			summary.LatestFetch = parseTime(latest.String)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
