// Package postgres provides PostgreSQL implementation of the orgs repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/orgs"
)

// Repository implements the orgs.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const orgColumns = `id, name, description, website, industry, company_size, phone, address, subscription_code, status, created_at, updated_at`

func scanOrganization(row pgx.Row, org *domain.Organization) error {
	return row.Scan(
		&org.ID,
		&org.Name,
		&org.Description,
		&org.Website,
		&org.Industry,
		&org.CompanySize,
		&org.Phone,
		&org.Address,
		&org.SubscriptionCode,
		&org.Status,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
}

// CreateOrganization creates a new organization.
func (r *Repository) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	return r.createOrganization(ctx, r.db, org)
}

// CreateOrganizationTx creates a new organization within a transaction.
func (r *Repository) CreateOrganizationTx(ctx context.Context, tx pgx.Tx, org *domain.Organization) error {
	return r.createOrganization(ctx, tx, org)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) createOrganization(ctx context.Context, q rowQuerier, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (name, description, website, industry, company_size, phone, address, subscription_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		org.Name,
		org.Description,
		org.Website,
		org.Industry,
		org.CompanySize,
		org.Phone,
		org.Address,
		org.SubscriptionCode,
		org.Status,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return orgs.ErrNameTaken
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// GetOrganization retrieves an organization by ID or exact name.
func (r *Repository) GetOrganization(ctx context.Context, identifier string) (*domain.Organization, error) {
	query := `
		SELECT ` + orgColumns + `
		FROM organizations
		WHERE id::text = $1 OR name = $1
	`
	var org domain.Organization
	if err := scanOrganization(r.db.QueryRow(ctx, query, identifier), &org); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orgs.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

// UpdateOrganization updates an existing organization.
func (r *Repository) UpdateOrganization(ctx context.Context, org *domain.Organization) error {
	query := `
		UPDATE organizations
		SET description = $2, website = $3, industry = $4, company_size = $5,
		    phone = $6, address = $7, status = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		org.ID,
		org.Description,
		org.Website,
		org.Industry,
		org.CompanySize,
		org.Phone,
		org.Address,
		org.Status,
	).Scan(&org.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return orgs.ErrOrganizationNotFound
		}
		return fmt.Errorf("update organization: %w", err)
	}
	return nil
}

// ListListedOrganizations retrieves organizations visible in the public directory.
func (r *Repository) ListListedOrganizations(ctx context.Context) ([]domain.Organization, error) {
	query := `
		SELECT ` + orgColumns + `
		FROM organizations
		WHERE status IN ('active', 'trial')
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	organizations := make([]domain.Organization, 0)
	for rows.Next() {
		var org domain.Organization
		if err := scanOrganization(rows, &org); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		organizations = append(organizations, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return organizations, nil
}

// CountServices returns how many services an organization owns.
func (r *Repository) CountServices(ctx context.Context, organizationID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM services WHERE organization_id = $1`,
		organizationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return count, nil
}

// BeginTx starts a new transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}
