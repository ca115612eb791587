// Package postgres provides PostgreSQL implementation of the public repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/public"
)

// Repository implements the public.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetOrganization retrieves an organization by ID or exact name.
func (r *Repository) GetOrganization(ctx context.Context, identifier string) (*domain.Organization, error) {
	query := `
		SELECT id, name, description, website, industry, company_size, phone, address, subscription_code, status, created_at, updated_at
		FROM organizations
		WHERE id::text = $1 OR name = $1
	`
	var org domain.Organization
	err := r.db.QueryRow(ctx, query, identifier).Scan(
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
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, public.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

// ListServices retrieves all services of an organization.
func (r *Repository) ListServices(ctx context.Context, organizationID string) ([]domain.Service, error) {
	query := `
		SELECT id, organization_id, name, description, status, uptime_percentage, created_at, updated_at
		FROM services
		WHERE organization_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var service domain.Service
		err := rows.Scan(
			&service.ID,
			&service.OrganizationID,
			&service.Name,
			&service.Description,
			&service.Status,
			&service.UptimePercentage,
			&service.CreatedAt,
			&service.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

// ListIncidentsSince retrieves the organization's incidents created at
// or after the given instant, oldest first.
func (r *Repository) ListIncidentsSince(ctx context.Context, organizationID string, since time.Time) ([]domain.Incident, error) {
	query := `
		SELECT i.id, i.service_id, i.title, i.description, i.status, i.impact, i.created_by, i.resolved_at, i.created_at, i.updated_at
		FROM incidents i
		JOIN services s ON s.id = i.service_id
		WHERE s.organization_id = $1 AND i.created_at >= $2
		ORDER BY i.created_at
	`
	rows, err := r.db.Query(ctx, query, organizationID, since)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		err := rows.Scan(
			&incident.ID,
			&incident.ServiceID,
			&incident.Title,
			&incident.Description,
			&incident.Status,
			&incident.Impact,
			&incident.CreatedBy,
			&incident.ResolvedAt,
			&incident.CreatedAt,
			&incident.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}
