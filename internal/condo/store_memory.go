package condo

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "normativa/pkg/domain"
	"normativa/pkg/platform/sentinel"
)

// InMemory is the map-backed Store used in tests and development mode.
type InMemory struct {
	mu     sync.RWMutex
	condos map[id.CondoID]*Condo
}

func NewInMemory() *InMemory {
	return &InMemory{condos: make(map[id.CondoID]*Condo)}
}

func (s *InMemory) Create(_ context.Context, c *Condo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.condos[c.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.condos {
		if strings.EqualFold(existing.Name, c.Name) {
			return sentinel.ErrConflict
		}
	}
	clone := *c
	s.condos[c.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, condoID id.CondoID) (*Condo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.condos[condoID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *InMemory) List(_ context.Context) ([]*Condo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Condo, 0, len(s.condos))
	for _, c := range s.condos {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
