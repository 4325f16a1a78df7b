// Package domain holds typed identifiers shared across modules.
//
// IDs are distinct UUID newtypes so a condominium ID can never be passed where
// a user ID is expected. Parsing enforces the invariant that IDs are valid,
// non-nil UUIDs at trust boundaries (HTTP handlers, CLI flags).
package domain

import (
	"github.com/google/uuid"

	dErrors "normativa/pkg/domain-errors"
)

type (
	// CondoID identifies a condominium, the tenant unit every record and
	// alert is scoped to.
	CondoID uuid.UUID

	// UserID identifies an administrator acting through the API.
	UserID uuid.UUID

	// AlertID identifies one persisted rule-evaluation outcome.
	AlertID uuid.UUID

	// RecordID identifies a dated record (assembly, plan, insurance,
	// certification).
	RecordID uuid.UUID
)

func (id CondoID) String() string  { return uuid.UUID(id).String() }
func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id AlertID) String() string  { return uuid.UUID(id).String() }
func (id RecordID) String() string { return uuid.UUID(id).String() }

// NewCondoID returns a fresh random condominium ID.
func NewCondoID() CondoID { return CondoID(uuid.New()) }

// NewAlertID returns a fresh random alert ID.
func NewAlertID() AlertID { return AlertID(uuid.New()) }

// NewRecordID returns a fresh random record ID.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// ParseCondoID parses and validates a condominium ID.
func ParseCondoID(s string) (CondoID, error) {
	u, err := parse(s, "condo id")
	return CondoID(u), err
}

// ParseUserID parses and validates a user ID.
func ParseUserID(s string) (UserID, error) {
	u, err := parse(s, "user id")
	return UserID(u), err
}

// ParseAlertID parses and validates an alert ID.
func ParseAlertID(s string) (AlertID, error) {
	u, err := parse(s, "alert id")
	return AlertID(u), err
}

// ParseRecordID parses and validates a dated-record ID.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parse(s, "record id")
	return RecordID(u), err
}

func parse(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be the nil UUID", kind)
	}
	return u, nil
}
