// Package store defines the backing store interface that persists cache
// documents.
package store

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store: closed")

// Store is durable string-keyed storage. A cache document lives under a
// single storage key.
type Store interface {
	// Get returns the text stored under key, or "" if there is none.
	Get(ctx context.Context, key string) (string, error)

	// Put replaces the text stored under key. A nil error means the write
	// is committed.
	Put(ctx context.Context, key, value string) error

	// Clear removes every entry held by the store.
	Clear(ctx context.Context) error

	// Name identifies the underlying storage location, e.g. "file:///var/cache".
	// Two stores with the same name share state.
	Name() string

	// Close releases any resources held by the store.
	Close() error
}

// Locker is implemented by stores that can exclude other processes.
// Lock and RLock block until acquired and return the matching release func.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
	RLock(ctx context.Context) (unlock func() error, err error)
}
