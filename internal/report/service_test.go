package report

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"normativa/internal/alerts"
	"normativa/internal/compliance"
	"normativa/internal/condo"
	"normativa/internal/records"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type singleCondo struct {
	condo *condo.Condo
}

func (s singleCondo) Get(_ context.Context, condoID id.CondoID) (*condo.Condo, error) {
	if condoID != s.condo.ID {
		return nil, dErrors.New(dErrors.CodeNotFound, "condo not found")
	}
	return s.condo, nil
}

type SummarySuite struct {
	suite.Suite

	condo          *condo.Condo
	alertStore     *alerts.InMemoryStore
	insurances     *records.InMemoryInsurances
	certifications *records.InMemoryCertifications
	service        *Service

	ctx context.Context
	now time.Time
}

func TestSummarySuite(t *testing.T) {
	suite.Run(t, new(SummarySuite))
}

func (s *SummarySuite) SetupTest() {
	s.condo = &condo.Condo{ID: id.NewCondoID(), Name: "Edificio Mirador", AdminEmail: "admin@mirador.cl"}
	s.alertStore = alerts.NewInMemoryStore()
	s.insurances = records.NewInMemoryInsurances()
	s.certifications = records.NewInMemoryCertifications()
	s.service = New(singleCondo{s.condo}, s.alertStore, s.insurances, s.certifications, testLogger())

	s.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *SummarySuite) TestUnknownCondoIsNotFound() {
	_, err := s.service.Summary(s.ctx, id.NewCondoID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *SummarySuite) TestSummaryAggregatesAlertsAndDocuments() {
	s.Require().NoError(s.alertStore.ReplaceForCondo(s.ctx, s.condo.ID, []compliance.Alert{
		{ID: id.NewAlertID(), CondoID: s.condo.ID, RuleID: compliance.RuleAnnualAssembly, Status: compliance.StatusOK},
		{ID: id.NewAlertID(), CondoID: s.condo.ID, RuleID: compliance.RuleFireInsurance, Status: compliance.StatusOpen,
			Details: compliance.Details{Message: "No hay Seguro de Incendio Espacios Comunes vigente (requisito normativo obligatorio)"}},
	}))

	expired := s.now.AddDate(0, -1, 0)
	valid := s.now.AddDate(0, 6, 0)
	s.Require().NoError(s.insurances.Create(s.ctx, &records.Insurance{
		ID: id.NewRecordID(), CondoID: s.condo.ID, Kind: records.InsuranceFireCommonAreas, PolicyNumber: "P1", ValidTo: &expired,
	}))
	s.Require().NoError(s.insurances.Create(s.ctx, &records.Insurance{
		ID: id.NewRecordID(), CondoID: s.condo.ID, Kind: "sismo", PolicyNumber: "P2", ValidTo: nil,
	}))
	s.Require().NoError(s.certifications.Create(s.ctx, &records.Certification{
		ID: id.NewRecordID(), CondoID: s.condo.ID, Kind: "gas", ValidTo: &valid,
	}))

	summary, err := s.service.Summary(s.ctx, s.condo.ID)
	s.Require().NoError(err)

	s.Equal(s.condo.ID, summary.CondoID)
	s.Equal(s.now, summary.GeneratedAt)
	s.Equal(1, summary.OpenAlerts)
	s.Len(summary.Rules, 2)

	// A policy without an expiry date counts as valid, not expired.
	s.Equal(DocumentStats{Total: 2, Valid: 1, Expired: 1}, summary.Insurances)
	s.Equal(DocumentStats{Total: 1, Valid: 1}, summary.Certifications)
}

func (s *SummarySuite) TestDocumentExpiringTodayCountsValid() {
	// Expiry dates are calendar days; a document valid through today stays in
	// the valid column even at mid-day.
	today := records.DateOf(s.now)
	s.Require().NoError(s.certifications.Create(s.ctx, &records.Certification{
		ID: id.NewRecordID(), CondoID: s.condo.ID, Kind: "ascensores", ValidTo: &today,
	}))

	summary, err := s.service.Summary(s.ctx, s.condo.ID)
	s.Require().NoError(err)
	s.Equal(DocumentStats{Total: 1, Valid: 1}, summary.Certifications)
}

// =============================================================================
// Redis Cache
// =============================================================================

type countingSummarizer struct {
	inner *Service
	calls int
}

func (c *countingSummarizer) Summary(ctx context.Context, condoID id.CondoID) (*Summary, error) {
	c.calls++
	return c.inner.Summary(ctx, condoID)
}

func (s *SummarySuite) newCache(t *testing.T) (*Cache, *countingSummarizer, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	counting := &countingSummarizer{inner: s.service}
	return NewCache(counting, client, time.Minute, testLogger()), counting, srv
}

func (s *SummarySuite) TestCacheServesSecondRead() {
	cache, counting, _ := s.newCache(s.T())

	first, err := cache.Summary(s.ctx, s.condo.ID)
	s.Require().NoError(err)
	second, err := cache.Summary(s.ctx, s.condo.ID)
	s.Require().NoError(err)

	s.Equal(1, counting.calls)
	s.Equal(first.CondoID, second.CondoID)
	s.Equal(first.OpenAlerts, second.OpenAlerts)
}

func (s *SummarySuite) TestInvalidateForcesRebuild() {
	cache, counting, _ := s.newCache(s.T())

	_, err := cache.Summary(s.ctx, s.condo.ID)
	s.Require().NoError(err)
	s.Require().NoError(cache.Invalidate(s.ctx, s.condo.ID))

	_, err = cache.Summary(s.ctx, s.condo.ID)
	s.Require().NoError(err)
	s.Equal(2, counting.calls)
}

func (s *SummarySuite) TestRedisOutageDegradesToDirectReads() {
	cache, counting, srv := s.newCache(s.T())
	srv.Close()

	for range 2 {
		summary, err := cache.Summary(s.ctx, s.condo.ID)
		s.Require().NoError(err)
		s.Equal(s.condo.ID, summary.CondoID)
	}
	s.Equal(2, counting.calls)
}
