package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

// DefaultLimit caps Recent when callers pass a non-positive limit.
const DefaultLimit = 20

// MaxLimit is the largest page Recent returns.
const MaxLimit = 500

var (
	// ErrNotFound is returned by Get when no analysis has the given id.
	ErrNotFound = errors.New("history: analysis not found")
	// ErrClosed is returned once the store has been closed.
	ErrClosed = errors.New("history: store closed")
)

// Entry is a single recorded classification.
type Entry struct {
	ID        string                     `json:"id"`
	CreatedAt time.Time                  `json:"created_at"`
	Filename  string                     `json:"filename,omitempty"`
	RequestID string                     `json:"request_id,omitempty"`
	Result    model.ClassificationResult `json:"result"`
}

// Store persists analyses in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
    id          TEXT PRIMARY KEY,
    created_at  DATETIME NOT NULL,
    filename    TEXT NOT NULL DEFAULT '',
    request_id  TEXT NOT NULL DEFAULT '',
    crop        TEXT NOT NULL,
    disease     TEXT NOT NULL,
    confidence  REAL NOT NULL,
    advice      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`

// Option customises the store.
type Option func(*Store)

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to dsn and migrates the schema. dsn is a file path or
// ":memory:".
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("history: dsn is required")
	}

	inMemory := dsn == ":memory:"
	if !inMemory && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("history: create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if inMemory {
		// every pooled connection would otherwise get its own database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: initialize schema: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Record stores entry, assigning an ID and timestamp when missing.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, ErrClosed
	}
	if strings.TrimSpace(entry.Result.Crop) == "" || strings.TrimSpace(entry.Result.Disease) == "" {
		return Entry{}, fmt.Errorf("history: crop and disease are required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, created_at, filename, request_id, crop, disease, confidence, advice)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CreatedAt,
		entry.Filename,
		entry.RequestID,
		entry.Result.Crop,
		entry.Result.Disease,
		entry.Result.Confidence,
		entry.Result.Advice,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("history: insert analysis: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, filename, request_id, crop, disease, confidence, advice
		FROM analyses
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate recent: %w", err)
	}
	return entries, nil
}

// Get returns the entry with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, ErrClosed
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, filename, request_id, crop, disease, confidence, advice
		FROM analyses
		WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var entry Entry
	err := row.Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.Filename,
		&entry.RequestID,
		&entry.Result.Crop,
		&entry.Result.Disease,
		&entry.Result.Confidence,
		&entry.Result.Advice,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, fmt.Errorf("history: scan analysis: %w", err)
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	return entry, nil
}
