package records

import (
	"context"
	"sync"
	"time"

	id "normativa/pkg/domain"
)

// Map-backed stores used by unit tests and development mode. One store type
// per record kind, mirroring the store interfaces.

type InMemoryAssemblies struct {
	mu   sync.RWMutex
	rows map[id.CondoID][]Assembly
}

func NewInMemoryAssemblies() *InMemoryAssemblies {
	return &InMemoryAssemblies{rows: make(map[id.CondoID][]Assembly)}
}

func (s *InMemoryAssemblies) Create(_ context.Context, a *Assembly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[a.CondoID] = append(s.rows[a.CondoID], *a)
	return nil
}

func (s *InMemoryAssemblies) ListByCondo(_ context.Context, condoID id.CondoID) ([]Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Assembly{}, s.rows[condoID]...), nil
}

func (s *InMemoryAssemblies) ListOrdinariaSince(_ context.Context, condoID id.CondoID, since time.Time) ([]Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Assembly
	for _, a := range s.rows[condoID] {
		if a.Kind == AssemblyOrdinaria && !a.Date.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *InMemoryAssemblies) LatestOrdinaria(_ context.Context, condoID id.CondoID) (*Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Assembly
	for _, a := range s.rows[condoID] {
		if a.Kind != AssemblyOrdinaria {
			continue
		}
		if latest == nil || a.Date.After(latest.Date) {
			clone := a
			latest = &clone
		}
	}
	return latest, nil
}

type InMemoryPlans struct {
	mu   sync.RWMutex
	rows map[id.CondoID][]EmergencyPlan
}

func NewInMemoryPlans() *InMemoryPlans {
	return &InMemoryPlans{rows: make(map[id.CondoID][]EmergencyPlan)}
}

func (s *InMemoryPlans) Create(_ context.Context, p *EmergencyPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.CondoID] = append(s.rows[p.CondoID], *p)
	return nil
}

func (s *InMemoryPlans) ListByCondo(_ context.Context, condoID id.CondoID) ([]EmergencyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EmergencyPlan{}, s.rows[condoID]...), nil
}

func (s *InMemoryPlans) ListUpdatedSince(_ context.Context, condoID id.CondoID, since time.Time) ([]EmergencyPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []EmergencyPlan
	for _, p := range s.rows[condoID] {
		if !p.UpdatedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

type InMemoryInsurances struct {
	mu   sync.RWMutex
	rows map[id.CondoID][]Insurance
}

func NewInMemoryInsurances() *InMemoryInsurances {
	return &InMemoryInsurances{rows: make(map[id.CondoID][]Insurance)}
}

func (s *InMemoryInsurances) Create(_ context.Context, i *Insurance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[i.CondoID] = append(s.rows[i.CondoID], *i)
	return nil
}

func (s *InMemoryInsurances) ListByCondo(_ context.Context, condoID id.CondoID) ([]Insurance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Insurance{}, s.rows[condoID]...), nil
}

func (s *InMemoryInsurances) ListActiveByKind(_ context.Context, condoID id.CondoID, kind string, activeAt time.Time) ([]Insurance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Insurance
	for _, i := range s.rows[condoID] {
		if i.Kind == kind && i.ValidTo != nil && !i.ValidTo.Before(activeAt) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *InMemoryInsurances) ListExpiringWithin(_ context.Context, condoID id.CondoID, from, to time.Time) ([]Insurance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Insurance
	for _, i := range s.rows[condoID] {
		if i.ValidTo != nil && !i.ValidTo.Before(from) && !i.ValidTo.After(to) {
			out = append(out, i)
		}
	}
	return out, nil
}

type InMemoryCertifications struct {
	mu   sync.RWMutex
	rows map[id.CondoID][]Certification
}

func NewInMemoryCertifications() *InMemoryCertifications {
	return &InMemoryCertifications{rows: make(map[id.CondoID][]Certification)}
}

func (s *InMemoryCertifications) Create(_ context.Context, c *Certification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c.CondoID] = append(s.rows[c.CondoID], *c)
	return nil
}

func (s *InMemoryCertifications) ListByCondo(_ context.Context, condoID id.CondoID) ([]Certification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Certification{}, s.rows[condoID]...), nil
}

func (s *InMemoryCertifications) ListActive(_ context.Context, condoID id.CondoID, activeAt time.Time) ([]Certification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Certification
	for _, c := range s.rows[condoID] {
		if c.ValidTo != nil && !c.ValidTo.Before(activeAt) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *InMemoryCertifications) ListExpiringWithin(_ context.Context, condoID id.CondoID, from, to time.Time) ([]Certification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Certification
	for _, c := range s.rows[condoID] {
		if c.ValidTo != nil && !c.ValidTo.Before(from) && !c.ValidTo.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}
