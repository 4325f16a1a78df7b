package compliance

import (
	"context"
	"time"

	"normativa/internal/records"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
)

// Sources bundles the record stores the gather functions read. All queries
// are scoped to one condominium and filtered server-side where possible.
type Sources struct {
	Assemblies     records.AssemblyStore
	Plans          records.PlanStore
	Insurances     records.InsuranceStore
	Certifications records.CertificationStore
}

// A gatherFunc fetches exactly the records one rule's predicate needs. A
// failed fetch must surface as an error: treating it as "no records found"
// would fabricate a compliance verdict from an outage.
type gatherFunc func(ctx context.Context, src Sources, condoID id.CondoID, now time.Time) (Facts, error)

func gatherAnnualAssembly(ctx context.Context, src Sources, condoID id.CondoID, now time.Time) (Facts, error) {
	assemblies, err := src.Assemblies.ListOrdinariaSince(ctx, condoID, records.DateOf(now).AddDate(0, 0, -lookbackDays))
	if err != nil {
		return Facts{}, fetchErr(RuleAnnualAssembly, err)
	}
	return Facts{Assemblies: assemblies}, nil
}

func gatherEvacuationPlan(ctx context.Context, src Sources, condoID id.CondoID, now time.Time) (Facts, error) {
	plans, err := src.Plans.ListUpdatedSince(ctx, condoID, records.DateOf(now).AddDate(0, 0, -lookbackDays))
	if err != nil {
		return Facts{}, fetchErr(RuleEvacuationPlan, err)
	}
	return Facts{Plans: plans}, nil
}

func gatherFireInsurance(ctx context.Context, src Sources, condoID id.CondoID, now time.Time) (Facts, error) {
	insurances, err := src.Insurances.ListActiveByKind(ctx, condoID, records.InsuranceFireCommonAreas, records.DateOf(now))
	if err != nil {
		return Facts{}, fetchErr(RuleFireInsurance, err)
	}
	return Facts{Insurances: insurances}, nil
}

func gatherCertifications(ctx context.Context, src Sources, condoID id.CondoID, now time.Time) (Facts, error) {
	certifications, err := src.Certifications.ListActive(ctx, condoID, records.DateOf(now))
	if err != nil {
		return Facts{}, fetchErr(RuleCertifications, err)
	}
	return Facts{Certifications: certifications}, nil
}

func fetchErr(ruleID RuleID, err error) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "gather facts for rule "+string(ruleID))
}
