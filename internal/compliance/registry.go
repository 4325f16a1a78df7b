package compliance

import (
	"context"
	"time"

	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
)

// Rule couples a stable ID with the fact query and the predicate that
// evaluates it. The rule set is data: adding a rule means adding a table
// entry, never touching the recalculation loop.
type Rule struct {
	ID       RuleID
	gather   gatherFunc
	evaluate func(f Facts, now time.Time) Result
}

// Run gathers the rule's facts and applies its predicate.
func (r Rule) Run(ctx context.Context, src Sources, condoID id.CondoID, now time.Time) (Result, error) {
	facts, err := r.gather(ctx, src, condoID, now)
	if err != nil {
		return Result{}, err
	}
	return r.evaluate(facts, now), nil
}

// builtinRules is the full rule table in stable listing order. Which of these
// are active comes from the config store; the definitions themselves are
// fixed at build time.
var builtinRules = []Rule{
	{ID: RuleAnnualAssembly, gather: gatherAnnualAssembly, evaluate: evaluateAnnualAssembly},
	{ID: RuleEvacuationPlan, gather: gatherEvacuationPlan, evaluate: evaluateEvacuationPlan},
	{ID: RuleFireInsurance, gather: gatherFireInsurance, evaluate: evaluateFireInsurance},
	{ID: RuleCertifications, gather: gatherCertifications, evaluate: evaluateCertifications},
}

// RuleConfigStore supplies per-rule active flags. Administrative toggling of
// rules lives outside this package; the engine only reads the flags.
type RuleConfigStore interface {
	// ActiveFlags returns the active flag per configured rule ID. Rules
	// absent from the map default to active so newly shipped rules are
	// evaluated without a config migration.
	ActiveFlags(ctx context.Context) (map[RuleID]bool, error)
}

// Registry supplies the currently active rules in stable order.
type Registry struct {
	config RuleConfigStore
}

func NewRegistry(config RuleConfigStore) *Registry {
	return &Registry{config: config}
}

// ListActive returns the active rules. A config-store failure propagates as
// an infrastructure error; callers must not mutate any state when it does.
func (r *Registry) ListActive(ctx context.Context) ([]Rule, error) {
	flags, err := r.config.ActiveFlags(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "load rule configuration")
	}

	active := make([]Rule, 0, len(builtinRules))
	for _, rule := range builtinRules {
		if enabled, configured := flags[rule.ID]; configured && !enabled {
			continue
		}
		active = append(active, rule)
	}
	return active, nil
}
