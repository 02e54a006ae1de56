// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/discochess/blobcache/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	name string

	mu      sync.RWMutex
	entries map[string]string
	closed  bool

	puts atomic.Int64
}

// New creates a new in-memory store with a unique name.
func New() *Store {
	return &Store{
		name:    "mem://" + uuid.NewString(),
		entries: make(map[string]string),
	}
}

// Get returns the entry for key, or "" if absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", store.ErrClosed
	}
	return s.entries[key], nil
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	s.entries[key] = value
	s.puts.Add(1)
	return nil
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	clear(s.entries)
	return nil
}

// Name returns the store's unique mem:// name.
func (s *Store) Name() string {
	return s.name
}

// Close marks the store closed. Entries are dropped.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// SetEntry sets raw text for key without counting a Put (for test setup).
func (s *Store) SetEntry(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Puts returns the number of successful Put calls.
func (s *Store) Puts() int64 {
	return s.puts.Load()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
