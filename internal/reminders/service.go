package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"normativa/internal/audit"
	"normativa/internal/condo"
	"normativa/internal/records"
	"normativa/pkg/email"
	"normativa/pkg/requestcontext"
)

// CondoLister enumerates the condominiums a sweep covers.
type CondoLister interface {
	List(ctx context.Context) ([]*condo.Condo, error)
}

// AuditPublisher records sent and failed reminders.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// assemblyDueAfter is how long after the last ordinary assembly the next one
// is announced as due. One month short of the annual obligation, so the
// administrator gets notice before the ASAMBLEA-ANUAL alert opens.
const assemblyDueAfterMonths = 11

// Service composes and sends the periodic reminders: documents expiring
// inside the lead window and ordinary assemblies approaching their annual
// deadline.
type Service struct {
	condos         CondoLister
	insurances     records.InsuranceStore
	certifications records.CertificationStore
	assemblies     records.AssemblyStore
	mailer         Mailer
	leadWindow     time.Duration

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
	condos CondoLister,
	insurances records.InsuranceStore,
	certifications records.CertificationStore,
	assemblies records.AssemblyStore,
	mailer Mailer,
	leadWindow time.Duration,
	opts ...Option,
) *Service {
	s := &Service{
		condos:         condos,
		insurances:     insurances,
		certifications: certifications,
		assemblies:     assemblies,
		mailer:         mailer,
		leadWindow:     leadWindow,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep runs one pass over every condominium. A failure on one condominium is
// logged and does not stop the pass; the joined error is returned so callers
// can surface partial failures. Returns the number of reminders sent.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	condos, err := s.condos.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list condos for reminder sweep: %w", err)
	}

	var sent int
	var errs []error
	for _, c := range condos {
		n, err := s.SweepCondo(ctx, c)
		sent += n
		if err != nil {
			s.logger.ErrorContext(ctx, "reminder sweep failed for condo",
				"condo_id", c.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("condo %s: %w", c.ID, err))
		}
	}
	return sent, errors.Join(errs...)
}

// SweepCondo sends the reminders one condominium is due for: insurance
// policies and certifications whose validity ends within the lead window, and
// the ordinary-assembly notice once the last one is older than eleven months.
func (s *Service) SweepCondo(ctx context.Context, c *condo.Condo) (int, error) {
	// Expiry dates are calendar days. Sweeping from the truncated day keeps a
	// document that expires today inside the window regardless of wall clock.
	day := records.DateOf(requestcontext.Now(ctx))
	until := day.Add(s.leadWindow)

	var msgs []email.Message

	insurances, err := s.insurances.ListExpiringWithin(ctx, c.ID, day, until)
	if err != nil {
		return 0, fmt.Errorf("list expiring insurances: %w", err)
	}
	for _, pol := range insurances {
		if pol.ValidTo == nil {
			continue
		}
		msgs = append(msgs, email.ExpiringInsurance(c.AdminEmail, c.Name, *pol.ValidTo))
	}

	certifications, err := s.certifications.ListExpiringWithin(ctx, c.ID, day, until)
	if err != nil {
		return 0, fmt.Errorf("list expiring certifications: %w", err)
	}
	for _, cert := range certifications {
		if cert.ValidTo == nil {
			continue
		}
		msgs = append(msgs, email.ExpiringCertification(c.AdminEmail, c.Name, cert.Kind, *cert.ValidTo))
	}

	due, lastDate, err := s.assemblyDue(ctx, c, day)
	if err != nil {
		return 0, err
	}
	if due {
		msgs = append(msgs, email.AssemblyDue(c.AdminEmail, c.Name, lastDate))
	}

	var sent int
	var errs []error
	for _, msg := range msgs {
		if err := s.mailer.Send(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "reminder delivery failed",
				"condo_id", c.ID,
				"subject", msg.Subject,
				"error", err,
			)
			s.emit(ctx, c, audit.ActionReminderFailed, msg.Subject)
			errs = append(errs, fmt.Errorf("send %q: %w", msg.Subject, err))
			continue
		}
		sent++
		s.emit(ctx, c, audit.ActionReminderSent, msg.Subject)
	}
	return sent, errors.Join(errs...)
}

// assemblyDue reports whether the annual-assembly notice should go out, and
// the date of the last ordinary assembly when one exists.
func (s *Service) assemblyDue(ctx context.Context, c *condo.Condo, now time.Time) (bool, *time.Time, error) {
	last, err := s.assemblies.LatestOrdinaria(ctx, c.ID)
	if err != nil {
		return false, nil, fmt.Errorf("look up latest ordinary assembly: %w", err)
	}
	if last == nil {
		return true, nil, nil
	}
	if last.Date.Before(now.AddDate(0, -assemblyDueAfterMonths, 0)) {
		d := last.Date
		return true, &d, nil
	}
	return false, nil, nil
}

func (s *Service) emit(ctx context.Context, c *condo.Condo, action audit.Action, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		CondoID: c.ID,
		Action:  action,
		Detail:  detail,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err)
	}
}
