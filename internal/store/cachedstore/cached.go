package cachedstore

import (
	"context"

	"github.com/discochess/blobcache/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Locker.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Locker = (*Store)(nil)
)

// Store wraps another Store with a read-through, write-through document
// cache. Writes made by other processes are not observed until the cached
// document is evicted, so wrap a store only when this process is its sole
// writer.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// Get returns the document for key, checking the cache first.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if text, ok := s.backend.Get(key); ok {
		return text, nil
	}

	text, err := s.underlying.Get(ctx, key)
	if err != nil {
		return "", err
	}

	s.backend.Set(key, text)
	return text, nil
}

// Put writes to the underlying store, then refreshes the cache.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := s.underlying.Put(ctx, key, value); err != nil {
		return err
	}
	s.backend.Set(key, value)
	return nil
}

// Clear clears the underlying store and drops every cached document.
func (s *Store) Clear(ctx context.Context) error {
	// Purge even on failure; the underlying state is unknown.
	defer s.backend.Purge()
	return s.underlying.Clear(ctx)
}

// Name returns the underlying store's name; caching does not change identity.
func (s *Store) Name() string {
	return s.underlying.Name()
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Lock forwards to the underlying store when it is a store.Locker.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	if l, ok := s.underlying.(store.Locker); ok {
		return l.Lock(ctx)
	}
	return noUnlock, nil
}

// RLock forwards to the underlying store when it is a store.Locker.
func (s *Store) RLock(ctx context.Context) (func() error, error) {
	if l, ok := s.underlying.(store.Locker); ok {
		return l.RLock(ctx)
	}
	return noUnlock, nil
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}

func noUnlock() error { return nil }
