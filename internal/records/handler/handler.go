package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"normativa/internal/records"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/platform/httputil"
	"normativa/pkg/requestcontext"
)

// Service defines the record operations the handler exposes.
type Service interface {
	CreateAssembly(ctx context.Context, condoID id.CondoID, kind records.AssemblyKind, date time.Time, actFileKey *string) (*records.Assembly, error)
	ListAssemblies(ctx context.Context, condoID id.CondoID) ([]records.Assembly, error)
	CreatePlan(ctx context.Context, condoID id.CondoID, fileKey *string, updatedAt time.Time) (*records.EmergencyPlan, error)
	ListPlans(ctx context.Context, condoID id.CondoID) ([]records.EmergencyPlan, error)
	CreateInsurance(ctx context.Context, condoID id.CondoID, kind, policyNumber string, validTo *time.Time) (*records.Insurance, error)
	ListInsurances(ctx context.Context, condoID id.CondoID) ([]records.Insurance, error)
	CreateCertification(ctx context.Context, condoID id.CondoID, kind string, validTo *time.Time) (*records.Certification, error)
	ListCertifications(ctx context.Context, condoID id.CondoID) ([]records.Certification, error)
}

// Handler handles the dated-record endpoints, all nested under one
// condominium.
type Handler struct {
	logger  *slog.Logger
	records Service
}

func New(records Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, records: records}
}

// Register registers the record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/condos/{condoID}", func(r chi.Router) {
		r.Post("/assemblies", h.handleCreateAssembly)
		r.Get("/assemblies", h.handleListAssemblies)
		r.Post("/emergency-plans", h.handleCreatePlan)
		r.Get("/emergency-plans", h.handleListPlans)
		r.Post("/insurances", h.handleCreateInsurance)
		r.Get("/insurances", h.handleListInsurances)
		r.Post("/certifications", h.handleCreateCertification)
		r.Get("/certifications", h.handleListCertifications)
	})
}

// Dates arrive as calendar days; the hour is irrelevant to every rule.
const dateLayout = time.DateOnly

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

func parseOptionalDate(value *string, field string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDate(*value, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func condoIDParam(r *http.Request) (id.CondoID, error) {
	return id.ParseCondoID(chi.URLParam(r, "condoID"))
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "record operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"operation", op,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

type assemblyRequest struct {
	Kind       string  `json:"kind"`
	Date       string  `json:"date"`
	ActFileKey *string `json:"act_file_key"`
}

func (req *assemblyRequest) Validate() error {
	if strings.TrimSpace(req.Kind) == "" {
		return dErrors.New(dErrors.CodeValidation, "kind is required")
	}
	if strings.TrimSpace(req.Date) == "" {
		return dErrors.New(dErrors.CodeValidation, "date is required")
	}
	return nil
}

type assemblyResponse struct {
	ID         id.RecordID `json:"id"`
	CondoID    id.CondoID  `json:"condo_id"`
	Kind       string      `json:"kind"`
	Date       string      `json:"date"`
	ActFileKey *string     `json:"act_file_key,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func toAssemblyResponse(a records.Assembly) assemblyResponse {
	return assemblyResponse{
		ID:         a.ID,
		CondoID:    a.CondoID,
		Kind:       string(a.Kind),
		Date:       a.Date.Format(dateLayout),
		ActFileKey: a.ActFileKey,
		CreatedAt:  a.CreatedAt,
	}
}

func (h *Handler) handleCreateAssembly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[assemblyRequest](w, r, h.logger)
	if !ok {
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	a, err := h.records.CreateAssembly(ctx, condoID, records.AssemblyKind(req.Kind), date, req.ActFileKey)
	if err != nil {
		h.writeFailure(ctx, w, "create_assembly", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAssemblyResponse(*a))
}

func (h *Handler) handleListAssemblies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	assemblies, err := h.records.ListAssemblies(ctx, condoID)
	if err != nil {
		h.writeFailure(ctx, w, "list_assemblies", err)
		return
	}
	out := make([]assemblyResponse, 0, len(assemblies))
	for _, a := range assemblies {
		out = append(out, toAssemblyResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type planRequest struct {
	FileKey   *string `json:"file_key"`
	UpdatedAt string  `json:"updated_at"`
}

func (req *planRequest) Validate() error {
	if strings.TrimSpace(req.UpdatedAt) == "" {
		return dErrors.New(dErrors.CodeValidation, "updated_at is required")
	}
	return nil
}

type planResponse struct {
	ID        id.RecordID `json:"id"`
	CondoID   id.CondoID  `json:"condo_id"`
	FileKey   *string     `json:"file_key,omitempty"`
	UpdatedAt string      `json:"updated_at"`
	CreatedAt time.Time   `json:"created_at"`
}

func toPlanResponse(p records.EmergencyPlan) planResponse {
	return planResponse{
		ID:        p.ID,
		CondoID:   p.CondoID,
		FileKey:   p.FileKey,
		UpdatedAt: p.UpdatedAt.Format(dateLayout),
		CreatedAt: p.CreatedAt,
	}
}

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[planRequest](w, r, h.logger)
	if !ok {
		return
	}
	updatedAt, err := parseDate(req.UpdatedAt, "updated_at")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.records.CreatePlan(ctx, condoID, req.FileKey, updatedAt)
	if err != nil {
		h.writeFailure(ctx, w, "create_plan", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPlanResponse(*p))
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	plans, err := h.records.ListPlans(ctx, condoID)
	if err != nil {
		h.writeFailure(ctx, w, "list_plans", err)
		return
	}
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type insuranceRequest struct {
	Kind         string  `json:"kind"`
	PolicyNumber string  `json:"policy_number"`
	ValidTo      *string `json:"valid_to"`
}

func (req *insuranceRequest) Validate() error {
	if strings.TrimSpace(req.Kind) == "" {
		return dErrors.New(dErrors.CodeValidation, "kind is required")
	}
	if strings.TrimSpace(req.PolicyNumber) == "" {
		return dErrors.New(dErrors.CodeValidation, "policy_number is required")
	}
	return nil
}

type insuranceResponse struct {
	ID           id.RecordID `json:"id"`
	CondoID      id.CondoID  `json:"condo_id"`
	Kind         string      `json:"kind"`
	PolicyNumber string      `json:"policy_number"`
	ValidTo      *string     `json:"valid_to,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

func toInsuranceResponse(i records.Insurance) insuranceResponse {
	resp := insuranceResponse{
		ID:           i.ID,
		CondoID:      i.CondoID,
		Kind:         i.Kind,
		PolicyNumber: i.PolicyNumber,
		CreatedAt:    i.CreatedAt,
	}
	if i.ValidTo != nil {
		v := i.ValidTo.Format(dateLayout)
		resp.ValidTo = &v
	}
	return resp
}

func (h *Handler) handleCreateInsurance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[insuranceRequest](w, r, h.logger)
	if !ok {
		return
	}
	validTo, err := parseOptionalDate(req.ValidTo, "valid_to")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	i, err := h.records.CreateInsurance(ctx, condoID, req.Kind, req.PolicyNumber, validTo)
	if err != nil {
		h.writeFailure(ctx, w, "create_insurance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toInsuranceResponse(*i))
}

func (h *Handler) handleListInsurances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	insurances, err := h.records.ListInsurances(ctx, condoID)
	if err != nil {
		h.writeFailure(ctx, w, "list_insurances", err)
		return
	}
	out := make([]insuranceResponse, 0, len(insurances))
	for _, i := range insurances {
		out = append(out, toInsuranceResponse(i))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type certificationRequest struct {
	Kind    string  `json:"kind"`
	ValidTo *string `json:"valid_to"`
}

func (req *certificationRequest) Validate() error {
	if strings.TrimSpace(req.Kind) == "" {
		return dErrors.New(dErrors.CodeValidation, "kind is required")
	}
	return nil
}

type certificationResponse struct {
	ID        id.RecordID `json:"id"`
	CondoID   id.CondoID  `json:"condo_id"`
	Kind      string      `json:"kind"`
	ValidTo   *string     `json:"valid_to,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func toCertificationResponse(c records.Certification) certificationResponse {
	resp := certificationResponse{
		ID:        c.ID,
		CondoID:   c.CondoID,
		Kind:      c.Kind,
		CreatedAt: c.CreatedAt,
	}
	if c.ValidTo != nil {
		v := c.ValidTo.Format(dateLayout)
		resp.ValidTo = &v
	}
	return resp
}

func (h *Handler) handleCreateCertification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[certificationRequest](w, r, h.logger)
	if !ok {
		return
	}
	validTo, err := parseOptionalDate(req.ValidTo, "valid_to")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.records.CreateCertification(ctx, condoID, req.Kind, validTo)
	if err != nil {
		h.writeFailure(ctx, w, "create_certification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCertificationResponse(*c))
}

func (h *Handler) handleListCertifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	condoID, err := condoIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	certifications, err := h.records.ListCertifications(ctx, condoID)
	if err != nil {
		h.writeFailure(ctx, w, "list_certifications", err)
		return
	}
	out := make([]certificationResponse, 0, len(certifications))
	for _, c := range certifications {
		out = append(out, toCertificationResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
