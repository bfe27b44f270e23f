package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB connection to the glucowatch SQLite cache.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the SQLite cache at the given path. It creates
// the parent directory if it does not exist.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL mode: different archives may be analyzed concurrently, and
	// readers must not block on a writer.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory cache, useful for testing.
func OpenInMemory() (*Store, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_results (
			fingerprint TEXT PRIMARY KEY,
			created_at  TEXT NOT NULL,
			result      BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating analysis_results table: %w", err)
	}
	return nil
}

// Get returns the serialized result stored under fingerprint, or
// ok=false when no entry exists.
func (s *Store) Get(fingerprint string) (data []byte, ok bool, err error) {
	row := s.conn.QueryRow("SELECT result FROM analysis_results WHERE fingerprint = ?", fingerprint)
	err = row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put stores a serialized result under fingerprint, replacing any
// previous entry. The write is a single statement: all-or-nothing.
func (s *Store) Put(fingerprint string, data []byte) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO analysis_results (fingerprint, created_at, result) VALUES (?, ?, ?)",
		fingerprint, time.Now().UTC().Format(time.RFC3339), data,
	)
	return err
}

// Entry describes one cached result for listings.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
	SizeBytes   int       `json:"size_bytes"`
}

// List returns all cache entries, newest first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.conn.Query(
		"SELECT fingerprint, created_at, length(result) FROM analysis_results ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.Fingerprint, &createdAt, &e.SizeBytes); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all cached results and reports how many were deleted.
func (s *Store) Clear() (int64, error) {
	res, err := s.conn.Exec("DELETE FROM analysis_results")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
