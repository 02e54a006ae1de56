// Package sqlitestore implements a SQLite storage backend.
//
// A lock file next to the database lets separate processes serialize the
// cache's load-merge-persist cycle, which spans several statements.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/discochess/blobcache/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Locker.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Locker = (*Store)(nil)
)

const lockRetryDelay = 10 * time.Millisecond

const schema = `CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store keeps entries in a single SQLite table.
type Store struct {
	path  string
	sqlDB atomic.Pointer[sql.DB]
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolving storage path: %w", err)
	}

	dsn := "file:" + abs + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{path: abs}
	s.sqlDB.Store(sqlDB)
	return s, nil
}

func (s *Store) db() (*sql.DB, error) {
	if s == nil {
		return nil, store.ErrClosed
	}
	sqlDB := s.sqlDB.Load()
	if sqlDB == nil {
		return nil, store.ErrClosed
	}
	return sqlDB, nil
}

// Get returns the value for key, or "" if there is no row.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	sqlDB, err := s.db()
	if err != nil {
		return "", err
	}

	var value string
	err = sqlDB.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get entry: %w", err)
	}
	return value, nil
}

// Put upserts the value for key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	sqlDB, err := s.db()
	if err != nil {
		return err
	}

	_, err = sqlDB.ExecContext(ctx,
		`INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

// Clear deletes every row.
func (s *Store) Clear(ctx context.Context) error {
	sqlDB, err := s.db()
	if err != nil {
		return err
	}
	if _, err := sqlDB.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// Name returns the sqlite:// URL of the database file.
func (s *Store) Name() string {
	return "sqlite://" + filepath.ToSlash(s.path)
}

// Lock takes the exclusive cross-process lock on the database.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	fl := flock.New(s.lockPath())
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquiring lock: %w", context.Cause(ctx))
	}
	return fl.Close, nil
}

// RLock takes the shared cross-process lock on the database.
func (s *Store) RLock(ctx context.Context) (func() error, error) {
	fl := flock.New(s.lockPath())
	ok, err := fl.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquiring shared lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("acquiring shared lock: %w", context.Cause(ctx))
	}
	return fl.Close, nil
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	sqlDB := s.sqlDB.Swap(nil)
	if sqlDB == nil {
		return nil
	}
	return sqlDB.Close()
}
