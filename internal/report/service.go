// Package report assembles the compliance summary an administrator sees on
// the condominium dashboard: per-rule statuses from the latest recalculation
// plus document-expiry statistics.
package report

import (
	"context"
	"log/slog"
	"time"

	"normativa/internal/compliance"
	"normativa/internal/condo"
	"normativa/internal/records"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/requestcontext"
)

// RuleStatus is one rule's latest outcome.
type RuleStatus struct {
	RuleID  compliance.RuleID `json:"rule_id"`
	Status  compliance.Status `json:"status"`
	Message string            `json:"message,omitempty"`
}

// DocumentStats aggregates one record kind's validity. A document without an
// expiry date is counted valid: absence of a date is not evidence of expiry,
// and only the rule engine decides compliance.
type DocumentStats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

// Summary is the dashboard payload for one condominium.
type Summary struct {
	CondoID        id.CondoID    `json:"condo_id"`
	GeneratedAt    time.Time     `json:"generated_at"`
	Rules          []RuleStatus  `json:"rules"`
	OpenAlerts     int           `json:"open_alerts"`
	Insurances     DocumentStats `json:"insurances"`
	Certifications DocumentStats `json:"certifications"`
}

// CondoGetter resolves a condominium, erroring with CodeNotFound when it does
// not exist.
type CondoGetter interface {
	Get(ctx context.Context, condoID id.CondoID) (*condo.Condo, error)
}

// Summarizer produces a summary. The Redis cache wraps a Service behind the
// same interface.
type Summarizer interface {
	Summary(ctx context.Context, condoID id.CondoID) (*Summary, error)
}

// Service builds summaries straight from the stores.
type Service struct {
	condos         CondoGetter
	alerts         compliance.AlertStore
	insurances     records.InsuranceStore
	certifications records.CertificationStore
	logger         *slog.Logger
}

func New(
	condos CondoGetter,
	alerts compliance.AlertStore,
	insurances records.InsuranceStore,
	certifications records.CertificationStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		condos:         condos,
		alerts:         alerts,
		insurances:     insurances,
		certifications: certifications,
		logger:         logger,
	}
}

// Summary assembles the dashboard payload for one condominium.
func (s *Service) Summary(ctx context.Context, condoID id.CondoID) (*Summary, error) {
	if _, err := s.condos.Get(ctx, condoID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)

	alerts, err := s.alerts.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list alerts for summary")
	}

	summary := &Summary{
		CondoID:     condoID,
		GeneratedAt: now,
		Rules:       make([]RuleStatus, 0, len(alerts)),
	}
	for _, a := range alerts {
		summary.Rules = append(summary.Rules, RuleStatus{
			RuleID:  a.RuleID,
			Status:  a.Status,
			Message: a.Details.Message,
		})
		if a.Status == compliance.StatusOpen {
			summary.OpenAlerts++
		}
	}

	insurances, err := s.insurances.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list insurances for summary")
	}
	for _, pol := range insurances {
		countDocument(&summary.Insurances, pol.ValidTo, now)
	}

	certifications, err := s.certifications.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list certifications for summary")
	}
	for _, cert := range certifications {
		countDocument(&summary.Certifications, cert.ValidTo, now)
	}

	return summary, nil
}

// countDocument compares against the calendar day: a document whose validity
// ends today is still valid for the rest of it.
func countDocument(stats *DocumentStats, validTo *time.Time, now time.Time) {
	stats.Total++
	if validTo != nil && validTo.Before(records.DateOf(now)) {
		stats.Expired++
		return
	}
	stats.Valid++
}
