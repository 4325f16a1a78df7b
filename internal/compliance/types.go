// Package compliance implements the rule-evaluation engine: it inspects a
// condominium's dated records against the regulatory rule set and regenerates
// that condominium's alert set.
package compliance

import (
	"time"

	id "normativa/pkg/domain"
)

// RuleID is the stable key of one compliance rule. The string values are part
// of the public contract; existing consumers match on them.
type RuleID string

const (
	// RuleAnnualAssembly requires an ordinary assembly within the last 365
	// days with the signed act attached.
	RuleAnnualAssembly RuleID = "ASAMBLEA-ANUAL"
	// RuleEvacuationPlan requires the evacuation plan to have been revised
	// within the last 365 days.
	RuleEvacuationPlan RuleID = "PLAN-EVAC-ANUAL"
	// RuleFireInsurance requires a currently valid fire insurance policy for
	// common areas.
	RuleFireInsurance RuleID = "SEGURO-VIGENTE"
	// RuleCertifications requires at least one currently valid certification
	// of any kind.
	RuleCertifications RuleID = "CERTIF-VIGENTE"
)

// Status is the outcome of one rule for one condominium.
type Status string

const (
	// StatusOK means the condominium satisfies the rule.
	StatusOK Status = "ok"
	// StatusOpen means the rule is unmet and needs administrator action.
	StatusOpen Status = "open"
)

// Details carries the structured payload of a non-compliant outcome. Empty
// when the rule is satisfied.
type Details struct {
	Message string `json:"message,omitempty"`
}

// Result is the outcome of applying one rule to one condominium.
type Result struct {
	Status  Status
	Details Details
}

// Alert is the persisted outcome of one rule evaluation. After a successful
// recalculation a condominium has exactly one alert per active rule.
type Alert struct {
	ID        id.AlertID
	CondoID   id.CondoID
	RuleID    RuleID
	Status    Status
	Details   Details
	CreatedAt time.Time
}
