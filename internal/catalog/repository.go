package catalog

import (
	"context"

	"github.com/statuskite/statuskite/internal/domain"
)

// Repository defines the interface for service catalog storage. Every
// operation is scoped to a single organization.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetService(ctx context.Context, organizationID, serviceID string) (*domain.Service, error)
	ListServices(ctx context.Context, organizationID string) ([]domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) error
	DeleteService(ctx context.Context, organizationID, serviceID string) error
}
