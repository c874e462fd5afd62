// Package cache provides the process-wide ephemeral keyed stores used to
// survive the payment redirect round trip and the password-reset flow. A
// store lives for the process lifetime and is not shared across instances;
// a horizontally-scaled deployment must swap the backing for a shared cache,
// which is why callers only ever see Put/Get/Delete.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a mutex-guarded TTL map. Expired entries are treated as absent,
// evicted on access, and swept opportunistically on every write; there is no
// background timer.
type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a store whose entries live for ttl after each Put
func New[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores value under key with a fresh expiry, overwriting any existing
// entry, and sweeps expired entries while it holds the lock.
func (s *Store[V]) Put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if e.expiresAt.Before(now) {
			delete(s.entries, k)
		}
	}

	s.entries[key] = entry[V]{value: value, expiresAt: now.Add(s.ttl)}
}

// Get returns the entry for key if present and unexpired. An expired entry
// is evicted and reported as absent.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V

	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if e.expiresAt.Before(s.now()) {
		delete(s.entries, key)
		return zero, false
	}

	return e.value, true
}

// Delete removes the entry for key unconditionally
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len reports the number of entries currently held, expired or not
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
