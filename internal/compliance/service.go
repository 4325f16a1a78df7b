package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"normativa/internal/audit"
	"normativa/internal/compliance/metrics"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/requestcontext"
)

// AlertStore persists evaluation outcomes. ReplaceForCondo must swap the
// condominium's whole alert set as one unit; the PostgreSQL implementation
// runs delete+insert in a single transaction.
type AlertStore interface {
	ListByCondo(ctx context.Context, condoID id.CondoID) ([]Alert, error)
	ReplaceForCondo(ctx context.Context, condoID id.CondoID, alerts []Alert) error
}

// AuditPublisher records recalculation outcomes for traceability.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// SummaryInvalidator drops cached compliance summaries after the alert set
// changes. Failures are logged, never propagated: the cache is an
// optimization, not a correctness dependency.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, condoID id.CondoID) error
}

// Service orchestrates one full recalculation pass per condominium.
type Service struct {
	registry *Registry
	sources  Sources
	alerts   AlertStore
	locks    *condoLocks

	logger      *slog.Logger
	metrics     *metrics.Metrics
	audit       AuditPublisher
	invalidator SummaryInvalidator
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithSummaryInvalidator(inv SummaryInvalidator) Option {
	return func(s *Service) {
		s.invalidator = inv
	}
}

// New constructs the compliance service.
func New(registry *Registry, sources Sources, alerts AlertStore, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		sources:  sources,
		alerts:   alerts,
		locks:    newCondoLocks(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recalculate evaluates every active rule for one condominium and replaces
// its alert set with the outcomes. The operation is idempotent: with
// unchanged records it produces the same statuses and messages every run.
//
// All rules are gathered and evaluated in memory before any alert is touched,
// so a fetch failure on any rule leaves the previous alert set intact.
func (s *Service) Recalculate(ctx context.Context, condoID id.CondoID) ([]Alert, error) {
	start := time.Now()

	// Rule configuration is loaded before any mutation. If it cannot be
	// loaded the whole operation aborts with nothing deleted.
	rules, err := s.registry.ListActive(ctx)
	if err != nil {
		s.observe(start, "failure")
		return nil, err
	}

	now := requestcontext.Now(ctx)

	// Rule evaluations share no mutable state, so fact gathering fans out.
	results := make([]Result, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	for i, rule := range rules {
		g.Go(func() error {
			res, err := rule.Run(gctx, s.sources, condoID, now)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.observe(start, "failure")
		s.logger.ErrorContext(ctx, "recalculation aborted, previous alerts kept",
			"request_id", requestcontext.RequestID(ctx),
			"condo_id", condoID,
			"error", err,
		)
		return nil, err
	}

	alerts := make([]Alert, len(rules))
	for i, rule := range rules {
		alerts[i] = Alert{
			ID:        id.NewAlertID(),
			CondoID:   condoID,
			RuleID:    rule.ID,
			Status:    results[i].Status,
			Details:   results[i].Details,
			CreatedAt: now,
		}
	}

	lock := s.locks.forCondo(condoID)
	lock.Lock()
	err = s.alerts.ReplaceForCondo(ctx, condoID, alerts)
	lock.Unlock()
	if err != nil {
		s.observe(start, "failure")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "replace alerts")
	}

	s.afterReplace(ctx, condoID, alerts)
	s.observe(start, "success")

	s.logger.InfoContext(ctx, "compliance recalculated",
		"request_id", requestcontext.RequestID(ctx),
		"condo_id", condoID,
		"rules", len(alerts),
		"open", countOpen(alerts),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return alerts, nil
}

// ListAlerts returns the current alert set for one condominium.
func (s *Service) ListAlerts(ctx context.Context, condoID id.CondoID) ([]Alert, error) {
	alerts, err := s.alerts.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list alerts")
	}
	return alerts, nil
}

func (s *Service) afterReplace(ctx context.Context, condoID id.CondoID, alerts []Alert) {
	if s.metrics != nil {
		for _, a := range alerts {
			s.metrics.CountRuleEvaluation(string(a.RuleID), string(a.Status))
		}
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, condoID); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate summary cache",
				"condo_id", condoID,
				"error", err,
			)
		}
	}
	if s.audit != nil {
		err := s.audit.Emit(ctx, audit.Event{
			CondoID: condoID,
			Actor:   requestcontext.UserID(ctx),
			Action:  audit.ActionRecalculated,
			Detail:  detailFor(alerts),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event",
				"condo_id", condoID,
				"error", err,
			)
		}
	}
}

func (s *Service) observe(start time.Time, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveRecalculation(start, outcome)
	}
}

func countOpen(alerts []Alert) int {
	n := 0
	for _, a := range alerts {
		if a.Status == StatusOpen {
			n++
		}
	}
	return n
}

func detailFor(alerts []Alert) string {
	open := countOpen(alerts)
	if open == 0 {
		return "all rules compliant"
	}
	return fmt.Sprintf("open rules: %d of %d", open, len(alerts))
}
