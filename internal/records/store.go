package records

import (
	"context"
	"time"

	id "normativa/pkg/domain"
)

// Stores are interface-driven so the rule engine and reminder scanner stay
// testable against in-memory implementations. Every query is scoped to one
// condominium; no implementation may ever return another condominium's rows.
// Date filters are applied inside the store (server-side in PostgreSQL).

type AssemblyStore interface {
	Create(ctx context.Context, a *Assembly) error
	ListByCondo(ctx context.Context, condoID id.CondoID) ([]Assembly, error)
	// ListOrdinariaSince returns ordinary assemblies with Date >= since.
	ListOrdinariaSince(ctx context.Context, condoID id.CondoID, since time.Time) ([]Assembly, error)
	// LatestOrdinaria returns the most recent ordinary assembly, or nil when
	// the condominium has none on record.
	LatestOrdinaria(ctx context.Context, condoID id.CondoID) (*Assembly, error)
}

type PlanStore interface {
	Create(ctx context.Context, p *EmergencyPlan) error
	ListByCondo(ctx context.Context, condoID id.CondoID) ([]EmergencyPlan, error)
	// ListUpdatedSince returns plans with UpdatedAt >= since.
	ListUpdatedSince(ctx context.Context, condoID id.CondoID, since time.Time) ([]EmergencyPlan, error)
}

type InsuranceStore interface {
	Create(ctx context.Context, i *Insurance) error
	ListByCondo(ctx context.Context, condoID id.CondoID) ([]Insurance, error)
	// ListActiveByKind returns policies of the given kind with
	// ValidTo >= activeAt. Policies without an expiry date are excluded.
	ListActiveByKind(ctx context.Context, condoID id.CondoID, kind string, activeAt time.Time) ([]Insurance, error)
	// ListExpiringWithin returns policies whose ValidTo falls in [from, to].
	ListExpiringWithin(ctx context.Context, condoID id.CondoID, from, to time.Time) ([]Insurance, error)
}

type CertificationStore interface {
	Create(ctx context.Context, c *Certification) error
	ListByCondo(ctx context.Context, condoID id.CondoID) ([]Certification, error)
	// ListActive returns certifications of any kind with ValidTo >= activeAt.
	ListActive(ctx context.Context, condoID id.CondoID, activeAt time.Time) ([]Certification, error)
	// ListExpiringWithin returns certifications whose ValidTo falls in [from, to].
	ListExpiringWithin(ctx context.Context, condoID id.CondoID, from, to time.Time) ([]Certification, error)
}
