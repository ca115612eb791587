// Package postgres provides the PostgreSQL implementation of the status
// engine's repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/status"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every query
// below runs identically inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements status.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL status repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const serviceColumns = `id, organization_id, name, description, status, uptime_percentage, created_at, updated_at`

func scanService(row pgx.Row, svc *domain.Service) error {
	return row.Scan(
		&svc.ID,
		&svc.OrganizationID,
		&svc.Name,
		&svc.Description,
		&svc.Status,
		&svc.UptimePercentage,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
}

func getService(ctx context.Context, q querier, serviceID string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var svc domain.Service
	if err := scanService(q.QueryRow(ctx, query, serviceID), &svc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, status.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &svc, nil
}

func listActiveIncidents(ctx context.Context, q querier, serviceID string) ([]domain.Incident, error) {
	query := `
		SELECT id, service_id, title, description, status, impact, created_by, resolved_at, created_at, updated_at
		FROM incidents
		WHERE service_id = $1 AND status != 'resolved'
	`
	rows, err := q.Query(ctx, query, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		var inc domain.Incident
		if err := rows.Scan(
			&inc.ID,
			&inc.ServiceID,
			&inc.Title,
			&inc.Description,
			&inc.Status,
			&inc.Impact,
			&inc.CreatedBy,
			&inc.ResolvedAt,
			&inc.CreatedAt,
			&inc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}

func updateServiceStatus(ctx context.Context, q querier, serviceID string, newStatus domain.ServiceStatus, updatedAt time.Time) error {
	query := `UPDATE services SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := q.Exec(ctx, query, serviceID, newStatus, updatedAt)
	if err != nil {
		return fmt.Errorf("update service status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return status.ErrServiceNotFound
	}
	return nil
}

// GetService retrieves a service by ID.
func (r *Repository) GetService(ctx context.Context, serviceID string) (*domain.Service, error) {
	return getService(ctx, r.db, serviceID)
}

// GetServiceTx retrieves a service by ID within a transaction.
func (r *Repository) GetServiceTx(ctx context.Context, tx pgx.Tx, serviceID string) (*domain.Service, error) {
	return getService(ctx, tx, serviceID)
}

// ListServices retrieves all services of an organization.
func (r *Repository) ListServices(ctx context.Context, organizationID string) ([]domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE organization_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var svc domain.Service
		if err := scanService(rows, &svc); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

// ListActiveIncidents retrieves the non-resolved incidents of a service.
func (r *Repository) ListActiveIncidents(ctx context.Context, serviceID string) ([]domain.Incident, error) {
	return listActiveIncidents(ctx, r.db, serviceID)
}

// ListActiveIncidentsTx retrieves the non-resolved incidents of a service within a transaction.
func (r *Repository) ListActiveIncidentsTx(ctx context.Context, tx pgx.Tx, serviceID string) ([]domain.Incident, error) {
	return listActiveIncidents(ctx, tx, serviceID)
}

// UpdateServiceStatus writes the derived status and update timestamp.
func (r *Repository) UpdateServiceStatus(ctx context.Context, serviceID string, newStatus domain.ServiceStatus, updatedAt time.Time) error {
	return updateServiceStatus(ctx, r.db, serviceID, newStatus, updatedAt)
}

// UpdateServiceStatusTx writes the derived status and update timestamp within a transaction.
func (r *Repository) UpdateServiceStatusTx(ctx context.Context, tx pgx.Tx, serviceID string, newStatus domain.ServiceStatus, updatedAt time.Time) error {
	return updateServiceStatus(ctx, tx, serviceID, newStatus, updatedAt)
}
