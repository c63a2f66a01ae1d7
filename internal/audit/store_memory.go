package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps audit events in memory, keyed by clearance ID.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := event.ClearanceID.String()
	s.events[key] = append(s.events[key], event)
	return nil
}

func (s *InMemoryStore) ListByClearance(_ context.Context, clearanceID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[clearanceID]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]Event)
}
