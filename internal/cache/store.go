// Package cache stores lint results in SQLite, keyed by file path, content
// hash and configuration fingerprint. A hit returns the diagnostics of an
// earlier run without parsing the file again.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/customfm/fmlint/pkg/lint"
)

// MemoryPath opens a private in-memory cache.
const MemoryPath = ":memory:"

var errNotOpen = errors.New("cache not opened")

// Key identifies one cached result.
type Key struct {
	Path        string
	ContentHash string
	Fingerprint string
}

// NewKey builds the key of a file's content under a config fingerprint.
func NewKey(path, content, fingerprint string) Key {
	return Key{Path: path, ContentHash: ContentHash(content), Fingerprint: fingerprint}
}

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Run records one lint invocation.
type Run struct {
	ID          string
	Fingerprint string
	StartedAt   time.Time
	CompletedAt *time.Time
	Files       int
	Violations  int
	CacheHits   int
}

// Store is the SQLite cache.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the per-user cache database location.
func DefaultPath() (string, error) {
	path, err := xdg.CacheFile(filepath.Join("fmlint", "cache.db"))
	if err != nil {
		return "", fmt.Errorf("resolve cache path: %w", err)
	}
	return path, nil
}

// Open opens (creating if needed) the cache at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an already open, migrated database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the cached diagnostics for key. ok is false on a miss.
func (s *Store) Get(ctx context.Context, key Key) (diags []lint.Diagnostic, ok bool, err error) {
	if s.db == nil {
		return nil, false, errNotOpen
	}
	var data string
	err = s.db.QueryRowContext(ctx,
		`SELECT diagnostics FROM results WHERE path = ? AND content_hash = ? AND fingerprint = ?`,
		key.Path, key.ContentHash, key.Fingerprint,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &diags); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return diags, true, nil
}

// Put stores diagnostics for key, replacing older results for the same
// path and fingerprint.
func (s *Store) Put(ctx context.Context, key Key, diags []lint.Diagnostic) error {
	if s.db == nil {
		return errNotOpen
	}
	if diags == nil {
		diags = []lint.Diagnostic{}
	}
	data, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM results WHERE path = ? AND fingerprint = ?`,
		key.Path, key.Fingerprint,
	); err != nil {
		return fmt.Errorf("failed to clear stale results: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO results (path, content_hash, fingerprint, diagnostics, updated_at) VALUES (?, ?, ?, ?, ?)`,
		key.Path, key.ContentHash, key.Fingerprint, string(data), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return tx.Commit()
}

// Prune removes results stored under any fingerprint other than keep.
func (s *Store) Prune(ctx context.Context, keep string) (int64, error) {
	if s.db == nil {
		return 0, errNotOpen
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE fingerprint <> ?`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// StartRun records the start of a lint run.
func (s *Store) StartRun(ctx context.Context, fingerprint string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	run := &Run{
		ID:          uuid.New().String(),
		Fingerprint: fingerprint,
		StartedAt:   time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, fingerprint, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Fingerprint, run.StartedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun stores the totals of a run.
func (s *Store) CompleteRun(ctx context.Context, run *Run) error {
	if s.db == nil {
		return errNotOpen
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed_at = ?, files = ?, violations = ?, cache_hits = ? WHERE id = ?`,
		now, run.Files, run.Violations, run.CacheHits, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", run.ID)
	}
	run.CompletedAt = &now
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	run := &Run{}
	var completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fingerprint, started_at, completed_at, files, violations, cache_hits FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.Fingerprint, &run.StartedAt, &completedAt, &run.Files, &run.Violations, &run.CacheHits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}
