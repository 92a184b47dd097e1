// Package cache persists lint reports in SQLite keyed by source content and
// configuration, so unchanged files skip the parse and lint work on repeat
// runs.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for cached reports.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled and creates
// the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate creates the reports table. Idempotent.
func (s *Store) migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("cache: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS reports (
  content_hash  TEXT NOT NULL,
  config_hash   TEXT NOT NULL,
  report        BLOB NOT NULL,
  created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (content_hash, config_hash)
);
`

// Key returns the cache key for source content.
func Key(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// Get returns the cached report for the (content, config) pair, and whether
// one was found.
func (s *Store) Get(contentHash, configHash string) ([]byte, bool, error) {
	var report []byte
	err := s.db.QueryRow(
		`SELECT report FROM reports WHERE content_hash = ? AND config_hash = ?`,
		contentHash, configHash,
	).Scan(&report)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get report: %w", err)
	}
	return report, true, nil
}

// Put stores (or replaces) the report for the (content, config) pair.
func (s *Store) Put(contentHash, configHash string, report []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO reports (content_hash, config_hash, report) VALUES (?, ?, ?)`,
		contentHash, configHash, report,
	)
	if err != nil {
		return fmt.Errorf("cache: put report: %w", err)
	}
	return nil
}

// Purge deletes every cached report.
func (s *Store) Purge() error {
	if _, err := s.db.Exec(`DELETE FROM reports`); err != nil {
		return fmt.Errorf("cache: purge: %w", err)
	}
	return nil
}
