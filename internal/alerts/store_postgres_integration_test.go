//go:build integration

package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"normativa/internal/alerts"
	"normativa/internal/compliance"
	"normativa/internal/condo"
	id "normativa/pkg/domain"
	"normativa/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *alerts.PostgresStore
	condoID  id.CondoID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = alerts.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "alerts", "condos"))

	s.condoID = id.NewCondoID()
	condoStore := condo.NewPostgres(s.postgres.DB)
	s.Require().NoError(condoStore.Create(ctx, &condo.Condo{
		ID: s.condoID, Name: "Edificio Mirador", AdminEmail: "admin@mirador.cl", CreatedAt: time.Now(),
	}))
}

func (s *PostgresStoreSuite) newAlert(ruleID compliance.RuleID, status compliance.Status, message string) compliance.Alert {
	return compliance.Alert{
		ID:        id.NewAlertID(),
		CondoID:   s.condoID,
		RuleID:    ruleID,
		Status:    status,
		Details:   compliance.Details{Message: message},
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (s *PostgresStoreSuite) TestReplaceForCondoSwapsWholeSet() {
	ctx := context.Background()

	first := []compliance.Alert{
		s.newAlert(compliance.RuleAnnualAssembly, compliance.StatusOpen, "No hay asamblea ordinaria en los últimos 365 días con acta adjunta"),
		s.newAlert(compliance.RuleCertifications, compliance.StatusOpen, "No hay certificaciones vigentes"),
	}
	s.Require().NoError(s.store.ReplaceForCondo(ctx, s.condoID, first))

	second := []compliance.Alert{
		s.newAlert(compliance.RuleAnnualAssembly, compliance.StatusOK, ""),
		s.newAlert(compliance.RuleCertifications, compliance.StatusOK, ""),
	}
	s.Require().NoError(s.store.ReplaceForCondo(ctx, s.condoID, second))

	got, err := s.store.ListByCondo(ctx, s.condoID)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	for _, a := range got {
		s.Equal(compliance.StatusOK, a.Status)
		s.Empty(a.Details.Message)
	}
}

func (s *PostgresStoreSuite) TestRoundTripPreservesMessage() {
	ctx := context.Background()

	in := []compliance.Alert{
		s.newAlert(compliance.RuleFireInsurance, compliance.StatusOpen, "No hay Seguro de Incendio Espacios Comunes vigente (requisito normativo obligatorio)"),
	}
	s.Require().NoError(s.store.ReplaceForCondo(ctx, s.condoID, in))

	got, err := s.store.ListByCondo(ctx, s.condoID)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(in[0].ID, got[0].ID)
	s.Equal(in[0].RuleID, got[0].RuleID)
	s.Equal(in[0].Details.Message, got[0].Details.Message)
}

func (s *PostgresStoreSuite) TestListScopesToCondo() {
	ctx := context.Background()

	otherID := id.NewCondoID()
	condoStore := condo.NewPostgres(s.postgres.DB)
	s.Require().NoError(condoStore.Create(ctx, &condo.Condo{
		ID: otherID, Name: "Torre Sur", AdminEmail: "admin@torresur.cl", CreatedAt: time.Now(),
	}))

	s.Require().NoError(s.store.ReplaceForCondo(ctx, s.condoID, []compliance.Alert{
		s.newAlert(compliance.RuleCertifications, compliance.StatusOpen, "No hay certificaciones vigentes"),
	}))

	got, err := s.store.ListByCondo(ctx, otherID)
	s.Require().NoError(err)
	s.Empty(got)
}
