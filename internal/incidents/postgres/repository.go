// Package postgres provides PostgreSQL implementation of the incidents repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/incidents"
)

// Repository implements the incidents.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `i.id, i.service_id, i.title, i.description, i.status, i.impact, i.created_by, i.resolved_at, i.created_at, i.updated_at`

func scanIncident(row pgx.Row, incident *domain.Incident) error {
	return row.Scan(
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
}

// GetIncident retrieves an incident scoped to an organization through
// its service.
func (r *Repository) GetIncident(ctx context.Context, organizationID, incidentID string) (*domain.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents i
		JOIN services s ON s.id = i.service_id
		WHERE s.organization_id = $1 AND i.id = $2
	`
	var incident domain.Incident
	if err := scanIncident(r.db.QueryRow(ctx, query, organizationID, incidentID), &incident); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return &incident, nil
}

// ListIncidents retrieves all incidents of an organization, newest first.
func (r *Repository) ListIncidents(ctx context.Context, organizationID string) ([]domain.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents i
		JOIN services s ON s.id = i.service_id
		WHERE s.organization_id = $1
		ORDER BY i.created_at DESC
	`
	return r.listIncidents(ctx, query, organizationID)
}

// ListServiceIncidents retrieves all incidents of one service, newest first.
func (r *Repository) ListServiceIncidents(ctx context.Context, organizationID, serviceID string) ([]domain.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents i
		JOIN services s ON s.id = i.service_id
		WHERE s.organization_id = $1 AND i.service_id = $2
		ORDER BY i.created_at DESC
	`
	return r.listIncidents(ctx, query, organizationID, serviceID)
}

// ListActiveIncidents retrieves unresolved incidents of an organization,
// newest first.
func (r *Repository) ListActiveIncidents(ctx context.Context, organizationID string) ([]domain.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents i
		JOIN services s ON s.id = i.service_id
		WHERE s.organization_id = $1 AND i.status != 'resolved'
		ORDER BY i.created_at DESC
	`
	return r.listIncidents(ctx, query, organizationID)
}

func (r *Repository) listIncidents(ctx context.Context, query string, args ...any) ([]domain.Incident, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		if err := scanIncident(rows, &incident); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return out, nil
}

// GetStatistics summarizes incident counts for an organization in a
// single query.
func (r *Repository) GetStatistics(ctx context.Context, organizationID string) (*incidents.Statistics, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE i.status != 'resolved'),
			COUNT(*) FILTER (WHERE i.status != 'resolved' AND i.impact = 'critical')
		FROM incidents i
		JOIN services s ON s.id = i.service_id
		WHERE s.organization_id = $1
	`
	var stats incidents.Statistics
	err := r.db.QueryRow(ctx, query, organizationID).Scan(&stats.Total, &stats.Active, &stats.CriticalActive)
	if err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	stats.Resolved = stats.Total - stats.Active
	return &stats, nil
}

// GetService retrieves a service scoped to an organization.
func (r *Repository) GetService(ctx context.Context, organizationID, serviceID string) (*domain.Service, error) {
	query := `
		SELECT id, organization_id, name, description, status, uptime_percentage, created_at, updated_at
		FROM services
		WHERE organization_id = $1 AND id = $2
	`
	var service domain.Service
	err := r.db.QueryRow(ctx, query, organizationID, serviceID).Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, incidents.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &service, nil
}

// BeginTx starts a new transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// CreateIncidentTx creates a new incident within a transaction.
func (r *Repository) CreateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (service_id, title, description, status, impact, created_by, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		incident.ServiceID,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Impact,
		incident.CreatedBy,
		incident.ResolvedAt,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// UpdateIncidentTx updates an existing incident within a transaction.
func (r *Repository) UpdateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = $2, description = $3, status = $4, impact = $5, resolved_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query,
		incident.ID,
		incident.Title,
		incident.Description,
		incident.Status,
		incident.Impact,
		incident.ResolvedAt,
	).Scan(&incident.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return incidents.ErrIncidentNotFound
		}
		return fmt.Errorf("update incident: %w", err)
	}
	return nil
}

// DeleteIncidentTx removes an incident within a transaction.
func (r *Repository) DeleteIncidentTx(ctx context.Context, tx pgx.Tx, incidentID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, incidentID)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}
