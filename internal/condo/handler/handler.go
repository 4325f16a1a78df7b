package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"normativa/internal/condo"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/platform/httputil"
	"normativa/pkg/requestcontext"
)

// Service defines the condominium operations the handler exposes.
type Service interface {
	Create(ctx context.Context, name, adminEmail string) (*condo.Condo, error)
	Get(ctx context.Context, condoID id.CondoID) (*condo.Condo, error)
	List(ctx context.Context) ([]*condo.Condo, error)
}

// Handler handles the condominium registry endpoints.
type Handler struct {
	logger *slog.Logger
	condos Service
}

func New(condos Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, condos: condos}
}

// Register registers the condominium routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/condos", h.handleCreate)
	r.Get("/condos", h.handleList)
	r.Get("/condos/{condoID}", h.handleGet)
}

type createRequest struct {
	Name       string `json:"name"`
	AdminEmail string `json:"admin_email"`
}

func (req *createRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(req.AdminEmail) == "" {
		return dErrors.New(dErrors.CodeValidation, "admin_email is required")
	}
	return nil
}

type condoResponse struct {
	ID         id.CondoID `json:"id"`
	Name       string     `json:"name"`
	AdminEmail string     `json:"admin_email"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toResponse(c *condo.Condo) condoResponse {
	return condoResponse{
		ID:         c.ID,
		Name:       c.Name,
		AdminEmail: c.AdminEmail,
		CreatedAt:  c.CreatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger)
	if !ok {
		return
	}

	c, err := h.condos.Create(ctx, req.Name, req.AdminEmail)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to create condo",
				"request_id", requestID,
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := id.ParseCondoID(chi.URLParam(r, "condoID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.condos.Get(ctx, condoID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condos, err := h.condos.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list condos",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]condoResponse, 0, len(condos))
	for _, c := range condos {
		out = append(out, toResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
