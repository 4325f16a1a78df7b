package condo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/requestcontext"
)

type CondoServiceSuite struct {
	suite.Suite
	store   *InMemory
	service *Service
	ctx     context.Context
}

func TestCondoServiceSuite(t *testing.T) {
	suite.Run(t, new(CondoServiceSuite))
}

func (s *CondoServiceSuite) SetupTest() {
	s.store = NewInMemory()
	s.service = New(s.store)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
}

func (s *CondoServiceSuite) TestCreate() {
	s.Run("valid condo is stored with the request time", func() {
		c, err := s.service.Create(s.ctx, "Edificio Mirador", "admin@mirador.cl")
		s.Require().NoError(err)
		s.Equal("Edificio Mirador", c.Name)
		s.Equal("admin@mirador.cl", c.AdminEmail)
		s.Equal(requestcontext.Now(s.ctx), c.CreatedAt)

		got, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.Name, got.Name)
	})

	s.Run("empty name is rejected", func() {
		_, err := s.service.Create(s.ctx, "   ", "admin@mirador.cl")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid email is rejected", func() {
		_, err := s.service.Create(s.ctx, "Edificio Central", "not-an-email")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate name conflicts, case-insensitively", func() {
		_, err := s.service.Create(s.ctx, "Torre Norte", "a@torre.cl")
		s.Require().NoError(err)

		_, err = s.service.Create(s.ctx, "torre norte", "b@torre.cl")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *CondoServiceSuite) TestGet() {
	s.Run("unknown condo is not found", func() {
		_, err := s.service.Get(s.ctx, id.NewCondoID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CondoServiceSuite) TestExists() {
	c, err := s.service.Create(s.ctx, "Edificio Pacífico", "admin@pacifico.cl")
	s.Require().NoError(err)

	ok, err := s.service.Exists(s.ctx, c.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.Exists(s.ctx, id.NewCondoID())
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CondoServiceSuite) TestListOrdersByName() {
	for _, name := range []string{"Zeta", "Alfa", "Mirador"} {
		_, err := s.service.Create(s.ctx, name, "admin@example.cl")
		s.Require().NoError(err)
	}

	condos, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(condos, 3)
	s.Equal("Alfa", condos[0].Name)
	s.Equal("Mirador", condos[1].Name)
	s.Equal("Zeta", condos[2].Name)
}
