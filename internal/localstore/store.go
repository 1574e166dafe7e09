// Package localstore handles device-scoped SQLite persistence.
package localstore

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store is a namespaced key-value blob store backed by SQLite. It keeps
// per-device state that survives restarts but never leaves the machine.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmt := `CREATE TABLE IF NOT EXISTS blobs (
		namespace TEXT PRIMARY KEY,
		blob BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(stmt)
	return err
}

// Get returns the blob stored under namespace, or nil when nothing has
// been written yet.
func (s *Store) Get(namespace string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow(
		`SELECT blob FROM blobs WHERE namespace = ?`, namespace,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// Put replaces the blob stored under namespace.
func (s *Store) Put(namespace string, blob []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO blobs (namespace, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (namespace) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		namespace, blob, time.Now().Format(time.RFC3339Nano),
	)
	return err
}
