package compliance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"normativa/internal/alerts"
	"normativa/internal/audit"
	"normativa/internal/compliance"
	"normativa/internal/records"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/requestcontext"
)

// =============================================================================
// Recalculation Suite
// =============================================================================
// The suite drives the full engine against in-memory stores: rule selection,
// fact gathering, alert replacement, and the failure paths that must leave
// the previous alert set untouched.

type RecalculateSuite struct {
	suite.Suite

	assemblies     *records.InMemoryAssemblies
	plans          *records.InMemoryPlans
	insurances     *records.InMemoryInsurances
	certifications *records.InMemoryCertifications
	alertStore     *alerts.InMemoryStore
	ruleConfig     *compliance.InMemoryRuleConfig
	service        *compliance.Service

	condoID id.CondoID
	now     time.Time
	ctx     context.Context
}

func TestRecalculateSuite(t *testing.T) {
	suite.Run(t, new(RecalculateSuite))
}

func (s *RecalculateSuite) SetupTest() {
	s.assemblies = records.NewInMemoryAssemblies()
	s.plans = records.NewInMemoryPlans()
	s.insurances = records.NewInMemoryInsurances()
	s.certifications = records.NewInMemoryCertifications()
	s.alertStore = alerts.NewInMemoryStore()
	s.ruleConfig = compliance.NewInMemoryRuleConfig()

	s.service = compliance.New(
		compliance.NewRegistry(s.ruleConfig),
		compliance.Sources{
			Assemblies:     s.assemblies,
			Plans:          s.plans,
			Insurances:     s.insurances,
			Certifications: s.certifications,
		},
		s.alertStore,
	)

	s.condoID = id.NewCondoID()
	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *RecalculateSuite) addCompliantRecords() {
	act := "acts/2025.pdf"
	s.Require().NoError(s.assemblies.Create(s.ctx, &records.Assembly{
		ID: id.NewRecordID(), CondoID: s.condoID,
		Kind: records.AssemblyOrdinaria, Date: s.now.AddDate(0, -2, 0), ActFileKey: &act,
	}))
	s.Require().NoError(s.plans.Create(s.ctx, &records.EmergencyPlan{
		ID: id.NewRecordID(), CondoID: s.condoID, UpdatedAt: s.now.AddDate(0, -3, 0),
	}))
	validTo := s.now.AddDate(0, 6, 0)
	s.Require().NoError(s.insurances.Create(s.ctx, &records.Insurance{
		ID: id.NewRecordID(), CondoID: s.condoID,
		Kind: records.InsuranceFireCommonAreas, PolicyNumber: "POL-1", ValidTo: &validTo,
	}))
	s.Require().NoError(s.certifications.Create(s.ctx, &records.Certification{
		ID: id.NewRecordID(), CondoID: s.condoID, Kind: "gas", ValidTo: &validTo,
	}))
}

func statusByRule(alerts []compliance.Alert) map[compliance.RuleID]compliance.Alert {
	out := make(map[compliance.RuleID]compliance.Alert, len(alerts))
	for _, a := range alerts {
		out[a.RuleID] = a
	}
	return out
}

func (s *RecalculateSuite) TestEmptyCondoOpensEveryRule() {
	result, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Len(result, 4)

	byRule := statusByRule(result)
	s.Equal("No hay asamblea ordinaria en los últimos 365 días con acta adjunta",
		byRule[compliance.RuleAnnualAssembly].Details.Message)
	s.Equal("Plan de evacuación no actualizado en los últimos 365 días",
		byRule[compliance.RuleEvacuationPlan].Details.Message)
	s.Equal("No hay Seguro de Incendio Espacios Comunes vigente (requisito normativo obligatorio)",
		byRule[compliance.RuleFireInsurance].Details.Message)
	s.Equal("No hay certificaciones vigentes",
		byRule[compliance.RuleCertifications].Details.Message)
	for _, a := range result {
		s.Equal(compliance.StatusOpen, a.Status)
		s.Equal(s.condoID, a.CondoID)
		s.Equal(s.now, a.CreatedAt)
	}
}

func (s *RecalculateSuite) TestCompliantCondoClosesEveryRule() {
	s.addCompliantRecords()

	result, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Len(result, 4)
	for _, a := range result {
		s.Equal(compliance.StatusOK, a.Status)
		s.Empty(a.Details.Message)
	}
}

func (s *RecalculateSuite) TestIdempotentWithUnchangedRecords() {
	s.addCompliantRecords()

	first, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)
	second, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)

	s.Require().Len(second, len(first))
	for i := range first {
		s.Equal(first[i].RuleID, second[i].RuleID)
		s.Equal(first[i].Status, second[i].Status)
		s.Equal(first[i].Details, second[i].Details)
	}

	stored, err := s.alertStore.ListByCondo(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Len(stored, 4)
}

func (s *RecalculateSuite) TestInactiveRuleProducesNoAlert() {
	s.ruleConfig.SetActive(compliance.RuleEvacuationPlan, false)

	result, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Len(result, 3)
	for _, a := range result {
		s.NotEqual(compliance.RuleEvacuationPlan, a.RuleID)
	}
}

func (s *RecalculateSuite) TestCondosAreIsolated() {
	other := id.NewCondoID()
	act := "acts/other.pdf"
	s.Require().NoError(s.assemblies.Create(s.ctx, &records.Assembly{
		ID: id.NewRecordID(), CondoID: other,
		Kind: records.AssemblyOrdinaria, Date: s.now.AddDate(0, -1, 0), ActFileKey: &act,
	}))

	result, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)

	// The other condominium's assembly must not leak into this evaluation.
	byRule := statusByRule(result)
	s.Equal(compliance.StatusOpen, byRule[compliance.RuleAnnualAssembly].Status)

	otherAlerts, err := s.alertStore.ListByCondo(s.ctx, other)
	s.Require().NoError(err)
	s.Empty(otherAlerts)
}

func (s *RecalculateSuite) TestGatherFailureKeepsPreviousAlerts() {
	// Seed a known-good alert set first.
	s.addCompliantRecords()
	previous, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Require().Len(previous, 4)

	failing := compliance.New(
		compliance.NewRegistry(s.ruleConfig),
		compliance.Sources{
			Assemblies:     s.assemblies,
			Plans:          failingPlans{},
			Insurances:     s.insurances,
			Certifications: s.certifications,
		},
		s.alertStore,
	)

	_, err = failing.Recalculate(s.ctx, s.condoID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	kept, err := s.alertStore.ListByCondo(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Equal(previous, kept)
}

func (s *RecalculateSuite) TestRuleConfigFailureAbortsBeforeMutation() {
	s.addCompliantRecords()
	previous, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)

	failing := compliance.New(
		compliance.NewRegistry(failingRuleConfig{}),
		compliance.Sources{
			Assemblies:     s.assemblies,
			Plans:          s.plans,
			Insurances:     s.insurances,
			Certifications: s.certifications,
		},
		s.alertStore,
	)

	_, err = failing.Recalculate(s.ctx, s.condoID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	kept, err := s.alertStore.ListByCondo(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Equal(previous, kept)
}

func (s *RecalculateSuite) TestConcurrentRecalculationsLeaveCompleteSet() {
	s.addCompliantRecords()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Recalculate(s.ctx, s.condoID)
			s.NoError(err)
		}()
	}
	wg.Wait()

	stored, err := s.alertStore.ListByCondo(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Len(stored, 4)
	seen := make(map[compliance.RuleID]bool)
	for _, a := range stored {
		s.False(seen[a.RuleID], "duplicate alert for rule %s", a.RuleID)
		seen[a.RuleID] = true
	}
}

func (s *RecalculateSuite) TestMidnightDatedRecordsCountOnBoundaryDay() {
	// Dates come out of the database at midnight while the reference clock is
	// mid-day. Records sitting exactly on the window boundary must still pass.
	today := records.DateOf(s.now)
	act := "acts/boundary.pdf"
	s.Require().NoError(s.assemblies.Create(s.ctx, &records.Assembly{
		ID: id.NewRecordID(), CondoID: s.condoID,
		Kind: records.AssemblyOrdinaria, Date: today.AddDate(0, 0, -365), ActFileKey: &act,
	}))
	s.Require().NoError(s.plans.Create(s.ctx, &records.EmergencyPlan{
		ID: id.NewRecordID(), CondoID: s.condoID, UpdatedAt: today.AddDate(0, 0, -365),
	}))
	s.Require().NoError(s.insurances.Create(s.ctx, &records.Insurance{
		ID: id.NewRecordID(), CondoID: s.condoID,
		Kind: records.InsuranceFireCommonAreas, PolicyNumber: "POL-9", ValidTo: &today,
	}))
	s.Require().NoError(s.certifications.Create(s.ctx, &records.Certification{
		ID: id.NewRecordID(), CondoID: s.condoID, Kind: "ascensores", ValidTo: &today,
	}))

	result, err := s.service.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)
	for _, a := range result {
		s.Equal(compliance.StatusOK, a.Status, "rule %s should be compliant on the boundary day", a.RuleID)
	}
}

func (s *RecalculateSuite) TestAuditFailureDoesNotBlockRecalculation() {
	s.addCompliantRecords()
	svc := compliance.New(
		compliance.NewRegistry(s.ruleConfig),
		compliance.Sources{
			Assemblies:     s.assemblies,
			Plans:          s.plans,
			Insurances:     s.insurances,
			Certifications: s.certifications,
		},
		s.alertStore,
		compliance.WithAuditPublisher(failingAudit{}),
	)

	result, err := svc.Recalculate(s.ctx, s.condoID)
	s.Require().NoError(err)
	s.Len(result, 4)
	for _, a := range result {
		s.Equal(compliance.StatusOK, a.Status)
	}
}

// =============================================================================
// Stubs
// =============================================================================

type failingPlans struct{}

func (failingPlans) Create(context.Context, *records.EmergencyPlan) error {
	return errors.New("store down")
}

func (failingPlans) ListByCondo(context.Context, id.CondoID) ([]records.EmergencyPlan, error) {
	return nil, errors.New("store down")
}

func (failingPlans) ListUpdatedSince(context.Context, id.CondoID, time.Time) ([]records.EmergencyPlan, error) {
	return nil, errors.New("store down")
}

type failingAudit struct{}

func (failingAudit) Emit(context.Context, audit.Event) error {
	return errors.New("publisher closed")
}

type failingRuleConfig struct{}

func (failingRuleConfig) ActiveFlags(context.Context) (map[compliance.RuleID]bool, error) {
	return nil, errors.New("config store down")
}
