package status

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
)

// Repository defines the storage the engine reads and writes.
//
// Implementations must return ErrServiceNotFound when the referenced
// service is absent. ListActiveIncidents reads the live incident set at
// call time; the engine never trusts an incident set passed in by a
// caller.
type Repository interface {
	GetService(ctx context.Context, serviceID string) (*domain.Service, error)
	ListServices(ctx context.Context, organizationID string) ([]domain.Service, error)
	ListActiveIncidents(ctx context.Context, serviceID string) ([]domain.Incident, error)
	// UpdateServiceStatus is a single-field write of the derived status
	// plus the bumped update timestamp.
	UpdateServiceStatus(ctx context.Context, serviceID string, newStatus domain.ServiceStatus, updatedAt time.Time) error

	// Transaction variants, used to commit a recalculation atomically
	// with the incident mutation that triggered it.
	GetServiceTx(ctx context.Context, tx pgx.Tx, serviceID string) (*domain.Service, error)
	ListActiveIncidentsTx(ctx context.Context, tx pgx.Tx, serviceID string) ([]domain.Incident, error)
	UpdateServiceStatusTx(ctx context.Context, tx pgx.Tx, serviceID string, newStatus domain.ServiceStatus, updatedAt time.Time) error
}
