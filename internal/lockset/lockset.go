// Package lockset hands out one read-write mutex per storage identity, so that
// every client bound to the same backing document serializes its
// load-merge-persist cycles against the others.
package lockset

import "sync"

// Default is the process-wide set used by clients that are not given one.
var Default = New()

// Set maps identities to mutexes. The zero value is not usable; call New.
// A Set is safe for concurrent use.
type Set struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// New creates an empty set.
func New() *Set {
	return &Set{locks: make(map[string]*sync.RWMutex)}
}

// For returns the mutex for identity, creating it on first use.
// The same identity always yields the same mutex.
func (s *Set) For(identity string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[identity]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[identity] = l
	}
	return l
}

// Len returns the number of identities seen so far.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
