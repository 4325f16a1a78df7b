// Package audit records who did what to which condominium. Events are
// emitted from domain logic, buffered, and persisted by a background worker
// so the hot path never blocks on the audit sink.
package audit

import (
	"context"
	"time"

	id "normativa/pkg/domain"
)

// Action names one auditable occurrence.
type Action string

const (
	ActionCondoCreated   Action = "condo_created"
	ActionRecordCreated  Action = "record_created"
	ActionRecalculated   Action = "compliance_recalculated"
	ActionReminderSent   Action = "reminder_sent"
	ActionReminderFailed Action = "reminder_failed"
)

// Event is one audit entry. Keep it transport-agnostic so stores can fan out.
type Event struct {
	Timestamp time.Time
	CondoID   id.CondoID
	// Actor is the administrator who triggered the action; zero for
	// worker-initiated events.
	Actor     id.UserID
	Action    Action
	Detail    string
	RequestID string
}

// Store persists audit events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCondo(ctx context.Context, condoID id.CondoID) ([]Event, error)
}
