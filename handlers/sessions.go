package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionEntry[T any] struct {
	value    T
	owner    string
	lastSeen time.Time
}

// SessionRegistry holds per-client state between requests and forgets
// sessions that stay idle longer than its TTL.
type SessionRegistry[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	items   map[string]*sessionEntry[T]
	onEvict func(id string, value T)
	now     func() time.Time
}

func NewSessionRegistry[T any](ttl time.Duration, onEvict func(id string, value T)) *SessionRegistry[T] {
	return &SessionRegistry[T]{
		ttl:     ttl,
		items:   make(map[string]*sessionEntry[T]),
		onEvict: onEvict,
		now:     time.Now,
	}
}

// Create stores value for owner and returns its new session id.
func (s *SessionRegistry[T]) Create(owner string, value T) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.items[id] = &sessionEntry[T]{value: value, owner: owner, lastSeen: s.now()}
	s.mu.Unlock()
	return id
}

// Get returns the session if it exists and belongs to owner. Sessions
// created anonymously are reachable by anyone holding the id.
func (s *SessionRegistry[T]) Get(id, owner string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok || (entry.owner != "" && entry.owner != owner) {
		var zero T
		return zero, false
	}
	entry.lastSeen = s.now()
	return entry.value, true
}

func (s *SessionRegistry[T]) Delete(id string) {
	s.mu.Lock()
	entry, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if ok && s.onEvict != nil {
		s.onEvict(id, entry.value)
	}
}

// Sweep evicts sessions idle since before now minus the TTL.
func (s *SessionRegistry[T]) Sweep(now time.Time) int {
	type evicted struct {
		id    string
		value T
	}
	var gone []evicted

	s.mu.Lock()
	for id, entry := range s.items {
		if now.Sub(entry.lastSeen) > s.ttl {
			gone = append(gone, evicted{id, entry.value})
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, e := range gone {
			s.onEvict(e.id, e.value)
		}
	}
	return len(gone)
}

func (s *SessionRegistry[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
