package compliance

import (
	"sync"

	id "normativa/pkg/domain"
)

// condoLocks serializes recalculation per condominium. Two overlapping
// recalculations for the same condominium would otherwise interleave their
// alert replacement and leave a mixed set. The map only ever grows, bounded
// by the number of condominiums.
type condoLocks struct {
	mu    sync.Mutex
	locks map[id.CondoID]*sync.Mutex
}

func newCondoLocks() *condoLocks {
	return &condoLocks{locks: make(map[id.CondoID]*sync.Mutex)}
}

func (l *condoLocks) forCondo(condoID id.CondoID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[condoID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[condoID] = m
	}
	return m
}
