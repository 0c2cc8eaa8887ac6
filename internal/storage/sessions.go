package storage

import (
	"sync"
	"time"
)

type sessionEntry[V any] struct {
	value    V
	lastSeen time.Time
}

// SessionStore provides in-memory storage for live quiz sessions.
// Every Get or Put refreshes the session's last activity time.
type SessionStore[K comparable, V any] struct {
	mu       sync.RWMutex
	sessions map[K]*sessionEntry[V]
	now      func() time.Time
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore[K comparable, V any]() *SessionStore[K, V] {
	return &SessionStore[K, V]{
		sessions: make(map[K]*sessionEntry[V]),
		now:      time.Now,
	}
}

// Put saves a session under key, replacing any previous one.
func (s *SessionStore[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = &sessionEntry[V]{value: value, lastSeen: s.now()}
}

// Get retrieves a session and marks it as active.
func (s *SessionStore[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[key]
	if !ok {
		var zero V
		return zero, false
	}
	entry.lastSeen = s.now()
	return entry.value, true
}

// Delete removes a session and returns it.
func (s *SessionStore[K, V]) Delete(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(s.sessions, key)
	return entry.value, true
}

// EvictIdle removes and returns sessions inactive for longer than ttl.
func (s *SessionStore[K, V]) EvictIdle(now time.Time, ttl time.Duration) []V {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []V
	for key, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > ttl {
			evicted = append(evicted, entry.value)
			delete(s.sessions, key)
		}
	}
	return evicted
}

// Len returns the number of stored sessions.
func (s *SessionStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
