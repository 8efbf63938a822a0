// Package prefs persists viewer preferences shared by every navigation
// session, the way browser tabs share local storage.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/db"
)

// NavPathKey holds the last followed link while sync is off.
const NavPathKey = "navpath"

// ErrUnavailable is returned by stores that cannot persist anything.
var ErrUnavailable = errors.New("preference storage unavailable")

// Store is a string key-value store. Writes are last-writer-wins. Reading an
// unset key yields "".
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Available() bool
}

// SQLiteStore keeps preferences in the preferences table.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a Store backed by the given database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Available() bool { return true }

// DB returns the database the store writes to.
func (s *SQLiteStore) DB() *db.DB { return s.db }

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Available() bool { return true }

// Unavailable is the store used when nothing can be persisted. Sessions
// using it hide the sync toggle and treat sync as permanently off.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (string, error) { return "", ErrUnavailable }
func (Unavailable) Set(context.Context, string, string) error { return ErrUnavailable }
func (Unavailable) Available() bool { return false }

// Open returns a SQLite-backed store at path. When persistence is disabled or
// the database cannot be opened it degrades to Unavailable. The returned
// close function is never nil.
func Open(path string, enabled bool, log *zap.Logger) (Store, func() error) {
	noop := func() error { return nil }
	if log == nil {
		log = zap.NewNop()
	}
	if !enabled || path == "" {
		return Unavailable{}, noop
	}
	d, err := db.Open(path)
	if err != nil {
		log.Warn("preference storage unavailable, sync toggle disabled",
			zap.String("path", path), zap.Error(err))
		return Unavailable{}, noop
	}
	return NewSQLiteStore(d), d.Close
}
