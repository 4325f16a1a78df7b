package condo

import (
	"context"
	"errors"
	"log/slog"

	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/platform/sentinel"
	"normativa/pkg/requestcontext"
)

// Service orchestrates condominium registration and lookup.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new condominium.
func (s *Service) Create(ctx context.Context, name, adminEmail string) (*Condo, error) {
	c, err := NewCondo(id.NewCondoID(), name, adminEmail, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid condo")
		}
		return nil, err
	}

	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "condo name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create condo")
	}

	s.logger.InfoContext(ctx, "condo created",
		"request_id", requestcontext.RequestID(ctx),
		"condo_id", c.ID,
		"name", c.Name,
	)
	return c, nil
}

// Get returns one condominium by ID.
func (s *Service) Get(ctx context.Context, condoID id.CondoID) (*Condo, error) {
	c, err := s.store.FindByID(ctx, condoID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "condo not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get condo")
	}
	return c, nil
}

// Exists reports whether a condominium is registered.
func (s *Service) Exists(ctx context.Context, condoID id.CondoID) (bool, error) {
	if _, err := s.store.FindByID(ctx, condoID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check condo")
	}
	return true, nil
}

// List returns all condominiums ordered by name.
func (s *Service) List(ctx context.Context) ([]*Condo, error) {
	condos, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list condos")
	}
	return condos, nil
}
