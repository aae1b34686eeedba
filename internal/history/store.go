package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/refaudit/internal/audit"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL,
	branch      TEXT NOT NULL,
	base_ref    TEXT NOT NULL,
	base_commit TEXT NOT NULL,
	removed     INTEGER NOT NULL,
	added       INTEGER NOT NULL,
	modified    INTEGER NOT NULL,
	matching    INTEGER NOT NULL,
	failures    INTEGER NOT NULL,
	collisions  INTEGER NOT NULL,
	identical   INTEGER NOT NULL
)`

const createRunsIndex = `
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`

// Entry is one recorded audit run.
type Entry struct {
	ID         string
	CreatedAt  time.Time
	Duration   time.Duration
	Branch     string
	BaseRef    string
	BaseCommit string
	Removed    int
	Added      int
	Modified   int
	Matching   int
	Failures   int
	Collisions int
	Identical  bool
}

// Store is a local sqlite log of past audit runs.
type Store struct {
	db *sql.DB
}

// DefaultLocation returns the default history database path.
func DefaultLocation() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".refaudit", "history.db"), nil
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// createSchema creates the runs table and its index.
// Uses a transaction for atomicity.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec(createRunsTable); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	if _, err := tx.Exec(createRunsIndex); err != nil {
		return fmt.Errorf("failed to create runs index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// Record stores the outcome of one audit run and returns its id.
func (s *Store) Record(result *audit.RunResult) (string, error) {
	removed, added, modified, matching := result.Counts()

	entry := Entry{
		ID:         uuid.NewString(),
		CreatedAt:  result.StartedAt,
		Duration:   result.Duration,
		Branch:     result.Branch,
		BaseRef:    result.BaseRef,
		BaseCommit: result.BaseCommit,
		Removed:    removed,
		Added:      added,
		Modified:   modified,
		Matching:   matching,
		Failures:   result.FailureCount(),
		Collisions: result.CollisionCount(),
		Identical:  result.Identical(),
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, created_at, duration_ms, branch, base_ref, base_commit,
			removed, added, modified, matching, failures, collisions, identical)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CreatedAt, entry.Duration.Milliseconds(),
		entry.Branch, entry.BaseRef, entry.BaseCommit,
		entry.Removed, entry.Added, entry.Modified, entry.Matching,
		entry.Failures, entry.Collisions, entry.Identical)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return entry.ID, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, created_at, duration_ms, branch, base_ref, base_commit,
			removed, added, modified, matching, failures, collisions, identical
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.CreatedAt, &durationMs, &e.Branch, &e.BaseRef, &e.BaseCommit,
			&e.Removed, &e.Added, &e.Modified, &e.Matching,
			&e.Failures, &e.Collisions, &e.Identical); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
