// Package records holds the dated records the compliance rules read:
// assemblies, emergency plans, insurance policies, and certifications.
// The rule engine treats all of them as read-only inputs.
package records

import (
	"time"

	id "normativa/pkg/domain"
)

// DateOf truncates t to its calendar day in UTC. Record dates carry no time
// of day, so every comparison against the wall clock must go through this or
// the boundary day falls out of the window.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AssemblyKind distinguishes the legally required ordinary assembly from
// extraordinary ones.
type AssemblyKind string

const (
	AssemblyOrdinaria      AssemblyKind = "ordinaria"
	AssemblyExtraordinaria AssemblyKind = "extraordinaria"
)

// InsuranceFireCommonAreas is the policy kind the SEGURO-VIGENTE rule
// requires. Other policy kinds never satisfy that rule.
const InsuranceFireCommonAreas = "incendio-espacios-comunes"

// Assembly is one held assembly. ActFileKey references the signed act in the
// external object store; nil means no act has been attached yet.
type Assembly struct {
	ID         id.RecordID
	CondoID    id.CondoID
	Kind       AssemblyKind
	Date       time.Time
	ActFileKey *string
	CreatedAt  time.Time
}

// EmergencyPlan is the condominium's evacuation plan. UpdatedAt is the date of
// its last revision, which the PLAN-EVAC-ANUAL rule evaluates.
type EmergencyPlan struct {
	ID        id.RecordID
	CondoID   id.CondoID
	FileKey   *string
	UpdatedAt time.Time
	CreatedAt time.Time
}

// Insurance is one insurance policy. ValidTo is nil when the policy has no
// recorded expiry date.
type Insurance struct {
	ID           id.RecordID
	CondoID      id.CondoID
	Kind         string
	PolicyNumber string
	ValidTo      *time.Time
	CreatedAt    time.Time
}

// Certification is one certification record (gas, elevators, electric, ...).
// Any kind satisfies the CERTIF-VIGENTE rule while ValidTo has not passed.
type Certification struct {
	ID        id.RecordID
	CondoID   id.CondoID
	Kind      string
	ValidTo   *time.Time
	CreatedAt time.Time
}
