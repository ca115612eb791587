// Package catalog manages an organization's service catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/ctxlog"
)

// Service implements service catalog business logic.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput holds data for registering a service.
type CreateInput struct {
	Name        string
	Description string
}

// Create registers a new service. Services start operational with the
// default uptime figure.
func (s *Service) Create(ctx context.Context, organizationID string, input CreateInput) (*domain.Service, error) {
	service := &domain.Service{
		OrganizationID:   organizationID,
		Name:             input.Name,
		Description:      input.Description,
		Status:           domain.ServiceStatusOperational,
		UptimePercentage: 99.9,
	}
	if err := s.repo.CreateService(ctx, service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return service, nil
}

// Get retrieves a service belonging to the organization.
func (s *Service) Get(ctx context.Context, organizationID, serviceID string) (*domain.Service, error) {
	return s.repo.GetService(ctx, organizationID, serviceID)
}

// List retrieves all services of an organization.
func (s *Service) List(ctx context.Context, organizationID string) ([]domain.Service, error) {
	return s.repo.ListServices(ctx, organizationID)
}

// UpdateInput holds partial service fields.
type UpdateInput struct {
	Name             *string
	Description      *string
	UptimePercentage *float64
}

// Update applies the supplied fields to a service. The stored status is
// not touched here, it is owned by the status engine and the manual
// override.
func (s *Service) Update(ctx context.Context, organizationID, serviceID string, input UpdateInput) (*domain.Service, error) {
	service, err := s.repo.GetService(ctx, organizationID, serviceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.UptimePercentage != nil {
		service.UptimePercentage = *input.UptimePercentage
	}

	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return service, nil
}

// OverrideStatus sets a service's stored status by hand. This is how
// maintenance is entered, incidents never derive it. The next
// incident-driven recalculation may replace the override.
func (s *Service) OverrideStatus(ctx context.Context, organizationID, serviceID string, status domain.ServiceStatus) (*domain.Service, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	service, err := s.repo.GetService(ctx, organizationID, serviceID)
	if err != nil {
		return nil, err
	}

	previous := service.Status
	service.Status = status
	if err := s.repo.UpdateService(ctx, service); err != nil {
		return nil, fmt.Errorf("override status: %w", err)
	}

	ctxlog.FromContext(ctx).Info("service status overridden",
		"service_id", serviceID,
		"from", string(previous),
		"to", string(status))
	return service, nil
}

// Delete removes a service. Its incidents go with it.
func (s *Service) Delete(ctx context.Context, organizationID, serviceID string) error {
	if err := s.repo.DeleteService(ctx, organizationID, serviceID); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("service deleted", "service_id", serviceID)
	return nil
}
