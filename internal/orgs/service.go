// Package orgs provides organization registration, settings and the
// public directory.
package orgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/ctxlog"
)

// StatusAggregator computes an organization's overall status from its
// services' stored statuses.
type StatusAggregator interface {
	Aggregate(ctx context.Context, organizationID string) (domain.ServiceStatus, error)
}

// AdminRegistrar creates the founding admin member of a new organization
// within the registration transaction.
type AdminRegistrar interface {
	CreateAdminTx(ctx context.Context, tx pgx.Tx, organizationID, email, fullName string) (*domain.User, error)
}

// Service implements organization business logic.
type Service struct {
	repo       Repository
	aggregator StatusAggregator
	registrar  AdminRegistrar
}

// NewService creates a new organization service.
func NewService(repo Repository, aggregator StatusAggregator, registrar AdminRegistrar) *Service {
	return &Service{
		repo:       repo,
		aggregator: aggregator,
		registrar:  registrar,
	}
}

// RegisterInput holds data for registering an organization.
type RegisterInput struct {
	Name             string
	Description      string
	Website          string
	Industry         string
	CompanySize      string
	Phone            string
	Address          string
	SubscriptionCode string
	AdminEmail       string
	AdminFullName    string
}

// Register creates a new organization together with its founding admin
// user. Both writes commit atomically. The subscription code is stored
// opaquely; plan entitlement checks happen elsewhere.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.Organization, *domain.User, error) {
	org := &domain.Organization{
		Name:             input.Name,
		Description:      input.Description,
		Website:          input.Website,
		Industry:         input.Industry,
		CompanySize:      input.CompanySize,
		Phone:            input.Phone,
		Address:          input.Address,
		SubscriptionCode: input.SubscriptionCode,
		Status:           domain.OrganizationStatusTrial,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			ctxlog.FromContext(ctx).Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := s.repo.CreateOrganizationTx(ctx, tx, org); err != nil {
		return nil, nil, fmt.Errorf("create organization: %w", err)
	}

	admin, err := s.registrar.CreateAdminTx(ctx, tx, org.ID, input.AdminEmail, input.AdminFullName)
	if err != nil {
		return nil, nil, fmt.Errorf("create admin user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}

	ctxlog.FromContext(ctx).Info("organization registered",
		"organization_id", org.ID,
		"name", org.Name,
	)
	return org, admin, nil
}

// Get resolves an organization by ID or name.
func (s *Service) Get(ctx context.Context, identifier string) (*domain.Organization, error) {
	return s.repo.GetOrganization(ctx, identifier)
}

// UpdateInput holds partial organization settings.
type UpdateInput struct {
	Description *string
	Website     *string
	Industry    *string
	CompanySize *string
	Phone       *string
	Address     *string
	Status      *domain.OrganizationStatus
}

// Update applies the supplied fields to an organization.
func (s *Service) Update(ctx context.Context, organizationID string, input UpdateInput) (*domain.Organization, error) {
	org, err := s.repo.GetOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		org.Description = *input.Description
	}
	if input.Website != nil {
		org.Website = *input.Website
	}
	if input.Industry != nil {
		org.Industry = *input.Industry
	}
	if input.CompanySize != nil {
		org.CompanySize = *input.CompanySize
	}
	if input.Phone != nil {
		org.Phone = *input.Phone
	}
	if input.Address != nil {
		org.Address = *input.Address
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		org.Status = *input.Status
	}

	if err := s.repo.UpdateOrganization(ctx, org); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return org, nil
}

// DirectoryEntry is one organization in the public directory, enriched
// with its live overall status and service count.
type DirectoryEntry struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Website      string               `json:"website,omitempty"`
	Status       domain.ServiceStatus `json:"status"`
	ServiceCount int                  `json:"service_count"`
}

// Directory lists active and trial organizations with their aggregated
// status. The overall status is computed on read, never persisted.
func (s *Service) Directory(ctx context.Context) ([]DirectoryEntry, error) {
	organizations, err := s.repo.ListListedOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	entries := make([]DirectoryEntry, 0, len(organizations))
	for i := range organizations {
		org := &organizations[i]

		overall, err := s.aggregator.Aggregate(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("aggregate status for %s: %w", org.ID, err)
		}

		count, err := s.repo.CountServices(ctx, org.ID)
		if err != nil {
			return nil, fmt.Errorf("count services for %s: %w", org.ID, err)
		}

		entries = append(entries, DirectoryEntry{
			ID:           org.ID,
			Name:         org.Name,
			Description:  org.Description,
			Website:      org.Website,
			Status:       overall,
			ServiceCount: count,
		})
	}
	return entries, nil
}
