// Package metrics provides observability for the compliance engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks recalculation throughput and per-rule outcomes.
type Metrics struct {
	Recalculations        *prometheus.CounterVec
	RecalculationDuration prometheus.Histogram
	RuleEvaluations       *prometheus.CounterVec
}

// New creates a Metrics instance with all compliance engine metrics
// registered on the default registerer.
func New() *Metrics {
	return &Metrics{
		Recalculations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "normativa_recalculations_total",
			Help: "Total number of compliance recalculations by outcome",
		}, []string{"outcome"}),
		RecalculationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "normativa_recalculation_duration_seconds",
			Help:    "Duration of full compliance recalculations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RuleEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "normativa_rule_evaluations_total",
			Help: "Total number of rule evaluations by rule and status",
		}, []string{"rule_id", "status"}),
	}
}

// ObserveRecalculation records one finished recalculation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveRecalculation(start time.Time, outcome string) {
	m.Recalculations.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		m.RecalculationDuration.Observe(time.Since(start).Seconds())
	}
}

// CountRuleEvaluation records one rule outcome.
func (m *Metrics) CountRuleEvaluation(ruleID, status string) {
	m.RuleEvaluations.WithLabelValues(ruleID, status).Inc()
}
