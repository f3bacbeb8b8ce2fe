package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed keys shared by the capture and dashboard contexts. Format changes
// require a coordinated key bump; there is no migration logic.
const (
	KeyEventBuffer = "behavioral_events"
	KeyPendingSync = "pending_sync"
	KeyCachedStats = "cached_stats"
)

var (
	ErrNotFound = errors.New("localstore: key not found")
)

// Store is a durable key-value store holding whole JSON-serializable
// values. It is the only state shared between the agent's contexts.
type Store interface {
	Get(ctx context.Context, key string, out interface{}) error
	Put(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SQLiteStore implements Store backed by a single-table SQLite database.
type SQLiteStore struct {
	db *sql.DB

	getStmt *sql.Stmt
	putStmt *sql.Stmt
	delStmt *sql.Stmt
}

// Open opens (creating if needed) the store at the given path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.delStmt, err = s.db.Prepare(`DELETE FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	return nil
}

// Get reads the value stored under key into out.
func (s *SQLiteStore) Get(ctx context.Context, key string, out interface{}) error {
	var raw string
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Put stores value under key as one JSON document, replacing any
// previous value wholesale.
func (s *SQLiteStore) Put(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if _, err := s.putStmt.ExecContext(ctx, key, string(raw), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key, if any.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.delStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
