package condo

import (
	"context"

	id "normativa/pkg/domain"
)

// Store persists condominiums. Implementations return sentinel errors for
// infrastructure facts; the service translates them into coded errors.
type Store interface {
	Create(ctx context.Context, c *Condo) error
	FindByID(ctx context.Context, condoID id.CondoID) (*Condo, error)
	List(ctx context.Context) ([]*Condo, error)
}
