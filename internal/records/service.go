package records

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"normativa/internal/audit"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
	"normativa/pkg/requestcontext"
)

// CondoChecker verifies the target condominium exists before a record is
// attached to it.
type CondoChecker interface {
	Exists(ctx context.Context, condoID id.CondoID) (bool, error)
}

// AuditPublisher records successful record creations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service validates and persists the dated records the rules read.
type Service struct {
	condos         CondoChecker
	assemblies     AssemblyStore
	plans          PlanStore
	insurances     InsuranceStore
	certifications CertificationStore

	logger *slog.Logger
	audit  AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func New(
	condos CondoChecker,
	assemblies AssemblyStore,
	plans PlanStore,
	insurances InsuranceStore,
	certifications CertificationStore,
	opts ...Option,
) *Service {
	s := &Service{
		condos:         condos,
		assemblies:     assemblies,
		plans:          plans,
		insurances:     insurances,
		certifications: certifications,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) checkCondo(ctx context.Context, condoID id.CondoID) error {
	ok, err := s.condos.Exists(ctx, condoID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check condo")
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "condo not found")
	}
	return nil
}

// CreateAssembly registers a held assembly. An extraordinary assembly is
// valid without an act; the annual-assembly rule only credits ordinary ones
// that carry one.
func (s *Service) CreateAssembly(ctx context.Context, condoID id.CondoID, kind AssemblyKind, date time.Time, actFileKey *string) (*Assembly, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	if kind != AssemblyOrdinaria && kind != AssemblyExtraordinaria {
		return nil, dErrors.New(dErrors.CodeValidation, "assembly kind must be ordinaria or extraordinaria")
	}
	if date.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "assembly date is required")
	}
	if actFileKey != nil && strings.TrimSpace(*actFileKey) == "" {
		actFileKey = nil
	}

	a := &Assembly{
		ID:         id.NewRecordID(),
		CondoID:    condoID,
		Kind:       kind,
		Date:       date,
		ActFileKey: actFileKey,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.assemblies.Create(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create assembly")
	}
	s.created(ctx, condoID, "assembly")
	return a, nil
}

func (s *Service) ListAssemblies(ctx context.Context, condoID id.CondoID) ([]Assembly, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	out, err := s.assemblies.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list assemblies")
	}
	return out, nil
}

// CreatePlan registers a revision of the evacuation plan.
func (s *Service) CreatePlan(ctx context.Context, condoID id.CondoID, fileKey *string, updatedAt time.Time) (*EmergencyPlan, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	if updatedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "plan revision date is required")
	}

	p := &EmergencyPlan{
		ID:        id.NewRecordID(),
		CondoID:   condoID,
		FileKey:   fileKey,
		UpdatedAt: updatedAt,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create emergency plan")
	}
	s.created(ctx, condoID, "emergency_plan")
	return p, nil
}

func (s *Service) ListPlans(ctx context.Context, condoID id.CondoID) ([]EmergencyPlan, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	out, err := s.plans.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list emergency plans")
	}
	return out, nil
}

// CreateInsurance registers an insurance policy. ValidTo may be nil when the
// policy has no recorded expiry date.
func (s *Service) CreateInsurance(ctx context.Context, condoID id.CondoID, kind, policyNumber string, validTo *time.Time) (*Insurance, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "insurance kind is required")
	}
	policyNumber = strings.TrimSpace(policyNumber)
	if policyNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "policy number is required")
	}

	i := &Insurance{
		ID:           id.NewRecordID(),
		CondoID:      condoID,
		Kind:         kind,
		PolicyNumber: policyNumber,
		ValidTo:      validTo,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.insurances.Create(ctx, i); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create insurance")
	}
	s.created(ctx, condoID, "insurance")
	return i, nil
}

func (s *Service) ListInsurances(ctx context.Context, condoID id.CondoID) ([]Insurance, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	out, err := s.insurances.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list insurances")
	}
	return out, nil
}

// CreateCertification registers a certification record.
func (s *Service) CreateCertification(ctx context.Context, condoID id.CondoID, kind string, validTo *time.Time) (*Certification, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "certification kind is required")
	}

	c := &Certification{
		ID:        id.NewRecordID(),
		CondoID:   condoID,
		Kind:      kind,
		ValidTo:   validTo,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.certifications.Create(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create certification")
	}
	s.created(ctx, condoID, "certification")
	return c, nil
}

func (s *Service) ListCertifications(ctx context.Context, condoID id.CondoID) ([]Certification, error) {
	if err := s.checkCondo(ctx, condoID); err != nil {
		return nil, err
	}
	out, err := s.certifications.ListByCondo(ctx, condoID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list certifications")
	}
	return out, nil
}

func (s *Service) created(ctx context.Context, condoID id.CondoID, recordType string) {
	s.logger.InfoContext(ctx, "record created",
		"request_id", requestcontext.RequestID(ctx),
		"condo_id", condoID,
		"record_type", recordType,
	)
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		CondoID: condoID,
		Actor:   requestcontext.UserID(ctx),
		Action:  audit.ActionRecordCreated,
		Detail:  recordType,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
