package compliance

import (
	"time"

	"normativa/internal/records"
)

// Facts are the dated records one rule evaluation reads. The gatherer fills
// only the slice the rule needs.
type Facts struct {
	Assemblies     []records.Assembly
	Plans          []records.EmergencyPlan
	Insurances     []records.Insurance
	Certifications []records.Certification
}

// lookbackDays is the window of the two annual rules: an obligation counts as
// met when its record dates back at most this many days, inclusive.
const lookbackDays = 365

// Fixed failure messages, reproduced verbatim: UI consumers match on them.
const (
	msgAnnualAssembly = "No hay asamblea ordinaria en los últimos 365 días con acta adjunta"
	msgEvacuationPlan = "Plan de evacuación no actualizado en los últimos 365 días"
	msgFireInsurance  = "No hay Seguro de Incendio Espacios Comunes vigente (requisito normativo obligatorio)"
	msgCertifications = "No hay certificaciones vigentes"
)

// The predicates below are pure domain logic - no I/O, no side effects. Each
// receives the gathered facts plus the reference date and re-checks the full
// rule condition, so they hold on their own even if a store widens a query.
// Record dates are calendar days, so the reference time is truncated to its
// day first: a record dated exactly 365 days ago, or expiring today, is still
// inside the window whatever the wall clock reads.

func evaluateAnnualAssembly(f Facts, now time.Time) Result {
	cutoff := records.DateOf(now).AddDate(0, 0, -lookbackDays)
	for _, a := range f.Assemblies {
		if a.Kind != records.AssemblyOrdinaria {
			continue
		}
		if a.Date.Before(cutoff) {
			continue
		}
		if a.ActFileKey == nil || *a.ActFileKey == "" {
			continue
		}
		return compliant()
	}
	return open(msgAnnualAssembly)
}

func evaluateEvacuationPlan(f Facts, now time.Time) Result {
	cutoff := records.DateOf(now).AddDate(0, 0, -lookbackDays)
	for _, p := range f.Plans {
		if !p.UpdatedAt.Before(cutoff) {
			return compliant()
		}
	}
	return open(msgEvacuationPlan)
}

func evaluateFireInsurance(f Facts, now time.Time) Result {
	day := records.DateOf(now)
	for _, i := range f.Insurances {
		if i.Kind != records.InsuranceFireCommonAreas {
			continue
		}
		if i.ValidTo == nil || i.ValidTo.Before(day) {
			continue
		}
		return compliant()
	}
	return open(msgFireInsurance)
}

func evaluateCertifications(f Facts, now time.Time) Result {
	day := records.DateOf(now)
	for _, c := range f.Certifications {
		if c.ValidTo != nil && !c.ValidTo.Before(day) {
			return compliant()
		}
	}
	return open(msgCertifications)
}

func compliant() Result {
	return Result{Status: StatusOK}
}

func open(message string) Result {
	return Result{Status: StatusOpen, Details: Details{Message: message}}
}
