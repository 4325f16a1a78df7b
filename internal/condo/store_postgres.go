package condo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "normativa/pkg/domain"
	"normativa/pkg/platform/sentinel"
)

// PostgresStore persists condominiums in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *Condo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO condos (id, name, admin_email, created_at)
		VALUES ($1, $2, $3, $4)
	`, c.ID.String(), c.Name, c.AdminEmail, c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert condo: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, condoID id.CondoID) (*Condo, error) {
	var c Condo
	var rawID string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, admin_email, created_at
		FROM condos
		WHERE id = $1
	`, condoID.String()).Scan(&rawID, &c.Name, &c.AdminEmail, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find condo: %w", err)
	}
	parsed, err := id.ParseCondoID(rawID)
	if err != nil {
		return nil, fmt.Errorf("condo row has malformed id %q: %w", rawID, err)
	}
	c.ID = parsed
	return &c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Condo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, admin_email, created_at
		FROM condos
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list condos: %w", err)
	}
	defer rows.Close()

	var out []*Condo
	for rows.Next() {
		var c Condo
		var rawID string
		if err := rows.Scan(&rawID, &c.Name, &c.AdminEmail, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan condo: %w", err)
		}
		parsed, err := id.ParseCondoID(rawID)
		if err != nil {
			return nil, fmt.Errorf("condo row has malformed id %q: %w", rawID, err)
		}
		c.ID = parsed
		out = append(out, &c)
	}
	return out, rows.Err()
}
