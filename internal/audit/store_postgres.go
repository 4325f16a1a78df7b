package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "normativa/pkg/domain"
)

// PostgresStore persists audit events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var actor any
	if event.Actor != (id.UserID{}) {
		actor = event.Actor.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, condo_id, actor_id, action, detail, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.NewString(), event.CondoID.String(), actor, string(event.Action), event.Detail, event.RequestID, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCondo(ctx context.Context, condoID id.CondoID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT condo_id, actor_id, action, detail, request_id, occurred_at
		FROM audit_events
		WHERE condo_id = $1
		ORDER BY occurred_at
	`, condoID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e       Event
			rawCnd  string
			actorID sql.NullString
			action  string
		)
		if err := rows.Scan(&rawCnd, &actorID, &action, &e.Detail, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		condo, err := id.ParseCondoID(rawCnd)
		if err != nil {
			return nil, fmt.Errorf("audit row has malformed condo id %q: %w", rawCnd, err)
		}
		e.CondoID = condo
		e.Action = Action(action)
		if actorID.Valid {
			if actor, err := id.ParseUserID(actorID.String); err == nil {
				e.Actor = actor
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
