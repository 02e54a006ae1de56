// Package lru implements an LRU cache eviction strategy.
package lru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/blobcache/internal/store/cachedstore/cachestrategy"
)

// Compile-time check that Strategy implements cachestrategy.Strategy.
var _ cachestrategy.Strategy = (*Strategy)(nil)

// Strategy implements LRU eviction over storage keys.
type Strategy struct {
	cache *lru.Cache[string, string]
}

// New creates a new LRU strategy holding at most capacity documents.
func New(capacity int) (*Strategy, error) {
	c, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &Strategy{cache: c}, nil
}

// Get retrieves a document by storage key.
func (s *Strategy) Get(key string) (string, bool) {
	return s.cache.Get(key)
}

// Add caches a document. It reports whether an eviction occurred.
func (s *Strategy) Add(key, value string) bool {
	return s.cache.Add(key, value)
}

// Remove drops a document and reports whether it was cached.
func (s *Strategy) Remove(key string) bool {
	return s.cache.Remove(key)
}

// Purge drops every cached document.
func (s *Strategy) Purge() {
	s.cache.Purge()
}

// Len returns the number of cached documents.
func (s *Strategy) Len() int {
	return s.cache.Len()
}
