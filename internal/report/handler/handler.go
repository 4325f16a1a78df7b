package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"normativa/internal/report"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/platform/httputil"
	"normativa/pkg/requestcontext"
)

// Handler handles the compliance summary endpoint.
type Handler struct {
	logger    *slog.Logger
	summaries report.Summarizer
}

func New(summaries report.Summarizer, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, summaries: summaries}
}

// Register registers the report routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/condos/{condoID}/summary", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := id.ParseCondoID(chi.URLParam(r, "condoID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.summaries.Summary(ctx, condoID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to build summary",
				"request_id", requestcontext.RequestID(ctx),
				"condo_id", condoID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
