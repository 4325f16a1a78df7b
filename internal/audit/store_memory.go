package audit

import (
	"context"
	"sync"

	id "normativa/pkg/domain"
)

// InMemoryStore keeps audit events in memory, append-only.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.CondoID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.CondoID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CondoID] = append(s.events[event.CondoID], event)
	return nil
}

func (s *InMemoryStore) ListByCondo(_ context.Context, condoID id.CondoID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[condoID]...), nil
}
