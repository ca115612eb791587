package public

import (
	"context"
	"time"

	"github.com/statuskite/statuskite/internal/domain"
)

// Repository defines the read-only storage interface backing the public
// status page and timeline.
type Repository interface {
	// GetOrganization resolves an organization by ID or by exact name.
	GetOrganization(ctx context.Context, identifier string) (*domain.Organization, error)
	ListServices(ctx context.Context, organizationID string) ([]domain.Service, error)
	// ListIncidentsSince returns the organization's incidents created at
	// or after the given instant, oldest first.
	ListIncidentsSince(ctx context.Context, organizationID string, since time.Time) ([]domain.Incident, error)
}
