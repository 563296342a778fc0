// Package ratelimit provides a swappable request counter used for API rate
// limiting and login-attempt tracking. Counters are keyed by an opaque
// identity (user ID or client IP) and bounded by a rolling time window.
// The in-memory store is the default wiring; a distributed counter can be
// injected behind the same interface.
package ratelimit

import (
	"sync"
	"time"
)

// Store counts events per key within a rolling window.
type Store interface {
	// Allow records one event for key and reports whether the key is still
	// within its limit. Events over the limit are not recorded.
	Allow(key string) bool

	// Peek reports whether key is within its limit without recording.
	Peek(key string) bool

	// Hit records one event for key unconditionally.
	Hit(key string)

	// Reset clears all recorded events for key.
	Reset(key string)
}

// MemoryStore is a process-local Store using a sliding window of event
// timestamps per key. Safe for concurrent use.
type MemoryStore struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	events map[string][]time.Time

	now func() time.Time // overridable in tests
}

// NewMemoryStore creates a store allowing limit events per key per window.
func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		limit:  limit,
		window: window,
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow implements Store.
func (s *MemoryStore) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.prune(key)
	if len(kept) >= s.limit {
		return false
	}
	s.events[key] = append(kept, s.now())
	return true
}

// Peek implements Store.
func (s *MemoryStore) Peek(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.prune(key)) < s.limit
}

// Hit implements Store.
func (s *MemoryStore) Hit(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[key] = append(s.prune(key), s.now())
}

// Reset implements Store.
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.events, key)
}

// prune drops events older than the window and stores the survivors.
// Caller must hold the lock.
func (s *MemoryStore) prune(key string) []time.Time {
	cutoff := s.now().Add(-s.window)
	kept := s.events[key][:0]
	for _, ts := range s.events[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(s.events, key)
		return nil
	}
	s.events[key] = kept
	return kept
}
