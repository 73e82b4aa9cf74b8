package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite keeps the key-value table in an embedded database file.
type SQLite struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and ensures the kv table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("kvstore: sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("kvstore: creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("kvstore: opening database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: creating kv table: %w", err)
	}
	return &SQLite{db: db, path: path, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, ErrEmptyKey
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: sqlite get: %w", err)
	}
	return value, true, nil
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("kvstore: sqlite set: %w", err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kvstore: sqlite delete: %w", err)
	}
	return nil
}

// Ping implements Pinger.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
