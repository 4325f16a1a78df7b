package alerts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"normativa/internal/compliance"
	id "normativa/pkg/domain"
	dErrors "normativa/pkg/domain-errors"
)

const defaultReplaceTimeout = 5 * time.Second

// PostgresStore persists alerts in PostgreSQL. ReplaceForCondo runs
// delete+insert inside one transaction so readers never observe a
// condominium with a partial alert set.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, timeout: defaultReplaceTimeout}
}

func (s *PostgresStore) ListByCondo(ctx context.Context, condoID id.CondoID) ([]compliance.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, condo_id, rule_id, status, message, created_at
		FROM alerts
		WHERE condo_id = $1
		ORDER BY rule_id
	`, condoID.String())
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []compliance.Alert
	for rows.Next() {
		var (
			a              compliance.Alert
			rawID, rawCnd  string
			ruleID, status string
			message        sql.NullString
		)
		if err := rows.Scan(&rawID, &rawCnd, &ruleID, &status, &message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alertID, err := id.ParseAlertID(rawID)
		if err != nil {
			return nil, fmt.Errorf("alert row has malformed id %q: %w", rawID, err)
		}
		condo, err := id.ParseCondoID(rawCnd)
		if err != nil {
			return nil, fmt.Errorf("alert row has malformed condo id %q: %w", rawCnd, err)
		}
		a.ID = alertID
		a.CondoID = condo
		a.RuleID = compliance.RuleID(ruleID)
		a.Status = compliance.Status(status)
		if message.Valid {
			a.Details = compliance.Details{Message: message.String}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ReplaceForCondo(ctx context.Context, condoID id.CondoID, alerts []compliance.Alert) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "replace aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin alert replacement: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alerts WHERE condo_id = $1`, condoID.String()); err != nil {
		return fmt.Errorf("delete previous alerts: %w", err)
	}

	for _, a := range alerts {
		var message any
		if a.Details.Message != "" {
			message = a.Details.Message
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO alerts (id, condo_id, rule_id, status, message, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID.String(), a.CondoID.String(), string(a.RuleID), string(a.Status), message, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert alert %s: %w", a.RuleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alert replacement: %w", err)
	}
	return nil
}
