// Package localstore is the persistent key/value storage used for the
// session token, the equivalent of a browser's local storage. It is a
// single sqlite table keyed by string; absence of a key is not an error.
package localstore

import (
	"database/sql"
	"errors"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// TokenKey is the well-known key under which the session token lives.
const TokenKey = "auth_token"

// Store wraps a sql.DB connection.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the storage file at path and runs
// migrations. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS local_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// Get returns the value stored under key, or "" if the key is absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.conn.QueryRow(
		"SELECT value FROM local_storage WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any prior value.
func (s *Store) Set(key, value string) error {
	_, err := s.conn.Exec(
		"INSERT INTO local_storage (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	_, err := s.conn.Exec("DELETE FROM local_storage WHERE key = ?", key)
	return err
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
