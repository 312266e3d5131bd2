// Package store provides SQLite-backed caching of per-file analysis
// results, keyed by path and content hash. Callers marshal their own
// payloads; the store only persists opaque JSON blobs.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// AnalysisEntry is one cached analysis record.
type AnalysisEntry struct {
	Path     string
	Hash     string
	Symbols  []byte
	Signals  []byte
	CachedAt time.Time
}

// Store wraps a SQLite database holding analysis cache entries.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures the
// cache table exists. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	stmt := `CREATE TABLE IF NOT EXISTS analysis_cache (
		path      TEXT NOT NULL,
		hash      TEXT NOT NULL,
		symbols   BLOB NOT NULL,
		signals   BLOB NOT NULL,
		cached_at DATETIME NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (path)
	)`
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("exec create: %w", err)
	}
	return nil
}

// Get returns the cached entry for path when its hash matches, or nil on a
// miss. A stale entry (hash mismatch) is a miss, not an error.
func (s *Store) Get(path, hash string) (*AnalysisEntry, error) {
	var e AnalysisEntry
	err := s.db.QueryRow(
		`SELECT path, hash, symbols, signals, cached_at
		 FROM analysis_cache WHERE path = ?`, path,
	).Scan(&e.Path, &e.Hash, &e.Symbols, &e.Signals, &e.CachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	if e.Hash != hash {
		return nil, nil
	}
	return &e, nil
}

// Put stores (or replaces) the cache entry for path.
func (s *Store) Put(path, hash string, symbols, signals []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO analysis_cache (path, hash, symbols, signals, cached_at)
		 VALUES (?, ?, ?, ?, datetime('now'))`,
		path, hash, symbols, signals,
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Delete removes the cache entry for path, if any.
func (s *Store) Delete(path string) error {
	if _, err := s.db.Exec(`DELETE FROM analysis_cache WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Purge drops entries older than the given age.
func (s *Store) Purge(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format("2006-01-02 15:04:05")
	res, err := s.db.Exec(`DELETE FROM analysis_cache WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return res.RowsAffected()
}
