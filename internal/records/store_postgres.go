package records

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	id "normativa/pkg/domain"
)

// PostgreSQL-backed record stores. Every query filters by condo_id so tenant
// isolation is enforced by the store, not by callers. Date-window filters run
// server-side.

type PostgresAssemblies struct {
	db *sql.DB
}

func NewPostgresAssemblies(db *sql.DB) *PostgresAssemblies {
	return &PostgresAssemblies{db: db}
}

func (s *PostgresAssemblies) Create(ctx context.Context, a *Assembly) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assemblies (id, condo_id, kind, held_on, act_file_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID.String(), a.CondoID.String(), string(a.Kind), a.Date, nullString(a.ActFileKey), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert assembly: %w", err)
	}
	return nil
}

func (s *PostgresAssemblies) ListByCondo(ctx context.Context, condoID id.CondoID) ([]Assembly, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, held_on, act_file_key, created_at
		FROM assemblies
		WHERE condo_id = $1
		ORDER BY held_on DESC
	`, condoID.String())
}

func (s *PostgresAssemblies) ListOrdinariaSince(ctx context.Context, condoID id.CondoID, since time.Time) ([]Assembly, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, held_on, act_file_key, created_at
		FROM assemblies
		WHERE condo_id = $1 AND kind = $2 AND held_on >= $3
		ORDER BY held_on DESC
	`, condoID.String(), string(AssemblyOrdinaria), since)
}

func (s *PostgresAssemblies) LatestOrdinaria(ctx context.Context, condoID id.CondoID) (*Assembly, error) {
	rows, err := s.query(ctx, `
		SELECT id, condo_id, kind, held_on, act_file_key, created_at
		FROM assemblies
		WHERE condo_id = $1 AND kind = $2
		ORDER BY held_on DESC
		LIMIT 1
	`, condoID.String(), string(AssemblyOrdinaria))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *PostgresAssemblies) query(ctx context.Context, query string, args ...any) ([]Assembly, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assemblies: %w", err)
	}
	defer rows.Close()

	var out []Assembly
	for rows.Next() {
		var (
			a             Assembly
			rawID, rawCnd string
			kind          string
			actFile       sql.NullString
		)
		if err := rows.Scan(&rawID, &rawCnd, &kind, &a.Date, &actFile, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assembly: %w", err)
		}
		if err := fillIDs(&a.ID, &a.CondoID, rawID, rawCnd); err != nil {
			return nil, err
		}
		a.Kind = AssemblyKind(kind)
		if actFile.Valid {
			a.ActFileKey = &actFile.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type PostgresPlans struct {
	db *sql.DB
}

func NewPostgresPlans(db *sql.DB) *PostgresPlans {
	return &PostgresPlans{db: db}
}

func (s *PostgresPlans) Create(ctx context.Context, p *EmergencyPlan) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emergency_plans (id, condo_id, file_key, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID.String(), p.CondoID.String(), nullString(p.FileKey), p.UpdatedAt, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert emergency plan: %w", err)
	}
	return nil
}

func (s *PostgresPlans) ListByCondo(ctx context.Context, condoID id.CondoID) ([]EmergencyPlan, error) {
	return s.query(ctx, `
		SELECT id, condo_id, file_key, updated_at, created_at
		FROM emergency_plans
		WHERE condo_id = $1
		ORDER BY updated_at DESC
	`, condoID.String())
}

func (s *PostgresPlans) ListUpdatedSince(ctx context.Context, condoID id.CondoID, since time.Time) ([]EmergencyPlan, error) {
	return s.query(ctx, `
		SELECT id, condo_id, file_key, updated_at, created_at
		FROM emergency_plans
		WHERE condo_id = $1 AND updated_at >= $2
		ORDER BY updated_at DESC
	`, condoID.String(), since)
}

func (s *PostgresPlans) query(ctx context.Context, query string, args ...any) ([]EmergencyPlan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query emergency plans: %w", err)
	}
	defer rows.Close()

	var out []EmergencyPlan
	for rows.Next() {
		var (
			p             EmergencyPlan
			rawID, rawCnd string
			fileKey       sql.NullString
		)
		if err := rows.Scan(&rawID, &rawCnd, &fileKey, &p.UpdatedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan emergency plan: %w", err)
		}
		if err := fillIDs(&p.ID, &p.CondoID, rawID, rawCnd); err != nil {
			return nil, err
		}
		if fileKey.Valid {
			p.FileKey = &fileKey.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type PostgresInsurances struct {
	db *sql.DB
}

func NewPostgresInsurances(db *sql.DB) *PostgresInsurances {
	return &PostgresInsurances{db: db}
}

func (s *PostgresInsurances) Create(ctx context.Context, i *Insurance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO insurances (id, condo_id, kind, policy_number, valid_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, i.ID.String(), i.CondoID.String(), i.Kind, i.PolicyNumber, nullTime(i.ValidTo), i.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert insurance: %w", err)
	}
	return nil
}

func (s *PostgresInsurances) ListByCondo(ctx context.Context, condoID id.CondoID) ([]Insurance, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, policy_number, valid_to, created_at
		FROM insurances
		WHERE condo_id = $1
		ORDER BY valid_to DESC NULLS LAST
	`, condoID.String())
}

func (s *PostgresInsurances) ListActiveByKind(ctx context.Context, condoID id.CondoID, kind string, activeAt time.Time) ([]Insurance, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, policy_number, valid_to, created_at
		FROM insurances
		WHERE condo_id = $1 AND kind = $2 AND valid_to >= $3
		ORDER BY valid_to DESC
	`, condoID.String(), kind, activeAt)
}

func (s *PostgresInsurances) ListExpiringWithin(ctx context.Context, condoID id.CondoID, from, to time.Time) ([]Insurance, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, policy_number, valid_to, created_at
		FROM insurances
		WHERE condo_id = $1 AND valid_to BETWEEN $2 AND $3
		ORDER BY valid_to
	`, condoID.String(), from, to)
}

func (s *PostgresInsurances) query(ctx context.Context, query string, args ...any) ([]Insurance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query insurances: %w", err)
	}
	defer rows.Close()

	var out []Insurance
	for rows.Next() {
		var (
			i             Insurance
			rawID, rawCnd string
			validTo       sql.NullTime
		)
		if err := rows.Scan(&rawID, &rawCnd, &i.Kind, &i.PolicyNumber, &validTo, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insurance: %w", err)
		}
		if err := fillIDs(&i.ID, &i.CondoID, rawID, rawCnd); err != nil {
			return nil, err
		}
		if validTo.Valid {
			i.ValidTo = &validTo.Time
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

type PostgresCertifications struct {
	db *sql.DB
}

func NewPostgresCertifications(db *sql.DB) *PostgresCertifications {
	return &PostgresCertifications{db: db}
}

func (s *PostgresCertifications) Create(ctx context.Context, c *Certification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certifications (id, condo_id, kind, valid_to, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID.String(), c.CondoID.String(), c.Kind, nullTime(c.ValidTo), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert certification: %w", err)
	}
	return nil
}

func (s *PostgresCertifications) ListByCondo(ctx context.Context, condoID id.CondoID) ([]Certification, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, valid_to, created_at
		FROM certifications
		WHERE condo_id = $1
		ORDER BY valid_to DESC NULLS LAST
	`, condoID.String())
}

func (s *PostgresCertifications) ListActive(ctx context.Context, condoID id.CondoID, activeAt time.Time) ([]Certification, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, valid_to, created_at
		FROM certifications
		WHERE condo_id = $1 AND valid_to >= $2
		ORDER BY valid_to DESC
	`, condoID.String(), activeAt)
}

func (s *PostgresCertifications) ListExpiringWithin(ctx context.Context, condoID id.CondoID, from, to time.Time) ([]Certification, error) {
	return s.query(ctx, `
		SELECT id, condo_id, kind, valid_to, created_at
		FROM certifications
		WHERE condo_id = $1 AND valid_to BETWEEN $2 AND $3
		ORDER BY valid_to
	`, condoID.String(), from, to)
}

func (s *PostgresCertifications) query(ctx context.Context, query string, args ...any) ([]Certification, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query certifications: %w", err)
	}
	defer rows.Close()

	var out []Certification
	for rows.Next() {
		var (
			c             Certification
			rawID, rawCnd string
			validTo       sql.NullTime
		)
		if err := rows.Scan(&rawID, &rawCnd, &c.Kind, &validTo, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan certification: %w", err)
		}
		if err := fillIDs(&c.ID, &c.CondoID, rawID, rawCnd); err != nil {
			return nil, err
		}
		if validTo.Valid {
			c.ValidTo = &validTo.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func fillIDs(recordID *id.RecordID, condoID *id.CondoID, rawRecord, rawCondo string) error {
	parsedRecord, err := id.ParseRecordID(rawRecord)
	if err != nil {
		return fmt.Errorf("record row has malformed id %q: %w", rawRecord, err)
	}
	parsedCondo, err := id.ParseCondoID(rawCondo)
	if err != nil {
		return fmt.Errorf("record row has malformed condo id %q: %w", rawCondo, err)
	}
	*recordID = parsedRecord
	*condoID = parsedCondo
	return nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
