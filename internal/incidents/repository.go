package incidents

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
)

// Statistics summarizes an organization's incident history.
type Statistics struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	Resolved       int `json:"resolved"`
	CriticalActive int `json:"critical_active"`
}

// Repository defines the interface for incident storage. Incidents
// belong to an organization only through their service, so every
// lookup is scoped by joining against it.
type Repository interface {
	GetIncident(ctx context.Context, organizationID, incidentID string) (*domain.Incident, error)
	ListIncidents(ctx context.Context, organizationID string) ([]domain.Incident, error)
	ListServiceIncidents(ctx context.Context, organizationID, serviceID string) ([]domain.Incident, error)
	ListActiveIncidents(ctx context.Context, organizationID string) ([]domain.Incident, error)
	GetStatistics(ctx context.Context, organizationID string) (*Statistics, error)

	// GetService verifies service ownership before incidents are
	// attached to it.
	GetService(ctx context.Context, organizationID, serviceID string) (*domain.Service, error)

	// Incident writes run inside a transaction so the service status
	// recalculation commits atomically with them.
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error
	UpdateIncidentTx(ctx context.Context, tx pgx.Tx, incident *domain.Incident) error
	DeleteIncidentTx(ctx context.Context, tx pgx.Tx, incidentID string) error
}
