// Package alerts persists the outcomes the compliance engine produces.
package alerts

import (
	"context"
	"sync"

	"normativa/internal/compliance"
	id "normativa/pkg/domain"
)

// InMemoryStore keeps alert sets in memory, used by unit tests and
// development mode. Replacement swaps the whole slice under one lock, so a
// reader never observes a half-replaced set.
type InMemoryStore struct {
	mu     sync.RWMutex
	alerts map[id.CondoID][]compliance.Alert
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{alerts: make(map[id.CondoID][]compliance.Alert)}
}

func (s *InMemoryStore) ListByCondo(_ context.Context, condoID id.CondoID) ([]compliance.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]compliance.Alert{}, s.alerts[condoID]...), nil
}

func (s *InMemoryStore) ReplaceForCondo(_ context.Context, condoID id.CondoID, alerts []compliance.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[condoID] = append([]compliance.Alert{}, alerts...)
	return nil
}
