package session

import (
	"log"
	"sync"
	"time"
)

// entry wraps a stored value so a timer can tell whether the key still
// holds the exact value it was armed for.
type entry[V any] struct {
	value V
}

// Store holds at most one value per key, each with a one-shot expiry timer.
// It is purely in-memory; nothing survives a restart.
type Store[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[V]
	timeout  time.Duration
	onExpire func(K, V)
	lockKey  func(K) (unlock func())
}

// NewStore creates a store whose entries expire after timeout. onExpire is
// called at most once per entry, only if the timer wins the claim.
func NewStore[K comparable, V any](timeout time.Duration, onExpire func(K, V)) *Store[K, V] {
	return &Store[K, V]{
		entries:  make(map[K]*entry[V]),
		timeout:  timeout,
		onExpire: onExpire,
	}
}

// Create inserts value under key, replacing any existing value, and arms the
// expiry timer. The displaced value, if any, is returned and will not expire.
func (s *Store[K, V]) Create(key K, value V) (prev V, replaced bool) {
	e := &entry[V]{value: value}

	s.mu.Lock()
	if old, ok := s.entries[key]; ok {
		prev, replaced = old.value, true
	}
	s.entries[key] = e
	s.mu.Unlock()

	if s.timeout > 0 {
		time.AfterFunc(s.timeout, func() { s.expire(key, e) })
	}
	return prev, replaced
}

// LockKeysWith makes the expiry timer hold lock(key) from the moment it
// removes an entry until onExpire returns, so callers sharing the same lock
// never observe an entry that is gone but not yet handled. Set it before the
// first Create.
func (s *Store[K, V]) LockKeysWith(lock func(K) (unlock func())) {
	s.lockKey = lock
}

// Get returns the value for key, or ok=false when there is no active entry.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Remove deletes the entry for key. Removing a missing key is a no-op.
func (s *Store[K, V]) Remove(key K) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Claim removes the entry for key only if it still holds value, as decided
// by match. Exactly one caller can claim a given entry.
func (s *Store[K, V]) Claim(key K, match func(V) bool) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !match(e.value) {
		var zero V
		return zero, false
	}
	delete(s.entries, key)
	return e.value, true
}

func (s *Store[K, V]) expire(key K, armed *entry[V]) {
	if s.lockKey != nil {
		defer s.lockKey(key)()
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok || e != armed {
		s.mu.Unlock()
		return
	}
	delete(s.entries, key)
	s.mu.Unlock()

	log.Printf("[SESSION EXPIRED] %v", key)
	if s.onExpire != nil {
		s.onExpire(key, e.value)
	}
}

// Len returns the number of active entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns a snapshot of the active keys.
func (s *Store[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]K, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}
