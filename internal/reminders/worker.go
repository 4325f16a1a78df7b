package reminders

import (
	"context"
	"log/slog"
	"time"

	"normativa/internal/compliance"
	id "normativa/pkg/domain"
	"normativa/pkg/requestcontext"
)

// Recalculator refreshes one condominium's alert set. Satisfied by
// compliance.Service.
type Recalculator interface {
	Recalculate(ctx context.Context, condoID id.CondoID) ([]compliance.Alert, error)
}

// Worker drives the daily pass: refresh every condominium's alerts, then run
// the reminder sweep against the fresh state.
type Worker struct {
	service  *Service
	recalc   Recalculator
	interval time.Duration
	logger   *slog.Logger
}

func NewWorker(service *Service, recalc Recalculator, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		service:  service,
		recalc:   recalc,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is done, executing one pass per interval. The first
// pass runs immediately on start.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single pass. Every condominium in the pass is evaluated
// against the same instant, so a record expiring mid-pass cannot yield an
// alert for one condominium and a reminder for another.
func (w *Worker) RunOnce(ctx context.Context) {
	ctx = requestcontext.WithTime(ctx, time.Now().UTC())

	condos, err := w.service.condos.List(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "reminder pass aborted, cannot list condos", "error", err)
		return
	}

	for _, c := range condos {
		if _, err := w.recalc.Recalculate(ctx, c.ID); err != nil {
			// Sweep still runs: reminders key off record dates, not alerts.
			w.logger.ErrorContext(ctx, "scheduled recalculation failed",
				"condo_id", c.ID,
				"error", err,
			)
		}
	}

	sent, err := w.service.Sweep(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "reminder sweep finished with errors",
			"sent", sent,
			"error", err,
		)
		return
	}
	w.logger.InfoContext(ctx, "reminder sweep complete", "condos", len(condos), "sent", sent)
}
