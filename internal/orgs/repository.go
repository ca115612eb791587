package orgs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
)

// Repository defines the interface for organization storage.
type Repository interface {
	CreateOrganization(ctx context.Context, org *domain.Organization) error
	// GetOrganization resolves an organization by ID or by exact name.
	GetOrganization(ctx context.Context, identifier string) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, org *domain.Organization) error
	// ListListedOrganizations returns organizations visible in the
	// public directory (active and trial plans).
	ListListedOrganizations(ctx context.Context) ([]domain.Organization, error)
	CountServices(ctx context.Context, organizationID string) (int, error)

	// Transaction support for registration (organization + admin member
	// must be created atomically).
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateOrganizationTx(ctx context.Context, tx pgx.Tx, org *domain.Organization) error
}
