// Package condo manages the condominium registry. A condominium is the tenant
// unit: every dated record and every alert is scoped to exactly one.
package condo

import (
	"net/mail"
	"strings"
	"time"

	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
)

// Condo is one administered condominium.
type Condo struct {
	ID id.CondoID
	// Name as registered with the administrator, unique per deployment.
	Name string
	// AdminEmail receives expiry reminders and assembly notices.
	AdminEmail string
	CreatedAt  time.Time
}

// NewCondo validates invariants and constructs a condominium.
func NewCondo(condoID id.CondoID, name, adminEmail string, now time.Time) (*Condo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "condo name is required")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "condo name must be at most 200 characters")
	}
	adminEmail = strings.TrimSpace(adminEmail)
	if _, err := mail.ParseAddress(adminEmail); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin email is not a valid address")
	}
	return &Condo{
		ID:         condoID,
		Name:       name,
		AdminEmail: adminEmail,
		CreatedAt:  now,
	}, nil
}
