package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"normativa/internal/compliance"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/platform/httputil"
	"normativa/pkg/requestcontext"
)

// Service defines the compliance operations the handler exposes.
type Service interface {
	Recalculate(ctx context.Context, condoID id.CondoID) ([]compliance.Alert, error)
	ListAlerts(ctx context.Context, condoID id.CondoID) ([]compliance.Alert, error)
}

// CondoChecker rejects requests against condominiums that do not exist.
type CondoChecker interface {
	Exists(ctx context.Context, condoID id.CondoID) (bool, error)
}

// Handler handles recalculation and alert endpoints.
type Handler struct {
	logger     *slog.Logger
	compliance Service
	condos     CondoChecker
}

func New(compliance Service, condos CondoChecker, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, compliance: compliance, condos: condos}
}

// Register registers the compliance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/condos/{condoID}/recalculate", h.handleRecalculate)
	r.Get("/condos/{condoID}/alerts", h.handleListAlerts)
}

type alertResponse struct {
	ID        id.AlertID         `json:"id"`
	CondoID   id.CondoID         `json:"condo_id"`
	RuleID    compliance.RuleID  `json:"rule_id"`
	Status    compliance.Status  `json:"status"`
	Details   compliance.Details `json:"details"`
	CreatedAt time.Time          `json:"created_at"`
}

func toResponses(alerts []compliance.Alert) []alertResponse {
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			ID:        a.ID,
			CondoID:   a.CondoID,
			RuleID:    a.RuleID,
			Status:    a.Status,
			Details:   a.Details,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}

func (h *Handler) resolveCondo(w http.ResponseWriter, r *http.Request) (id.CondoID, bool) {
	condoID, err := id.ParseCondoID(chi.URLParam(r, "condoID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CondoID{}, false
	}
	ok, err := h.condos.Exists(r.Context(), condoID)
	if err != nil {
		httputil.WriteError(w, err)
		return id.CondoID{}, false
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "condo not found"))
		return id.CondoID{}, false
	}
	return condoID, true
}

func (h *Handler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	condoID, ok := h.resolveCondo(w, r)
	if !ok {
		return
	}

	alerts, err := h.compliance.Recalculate(ctx, condoID)
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculation failed",
			"request_id", requestID,
			"condo_id", condoID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(alerts))
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, ok := h.resolveCondo(w, r)
	if !ok {
		return
	}

	alerts, err := h.compliance.ListAlerts(ctx, condoID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list alerts",
			"request_id", requestcontext.RequestID(ctx),
			"condo_id", condoID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(alerts))
}
