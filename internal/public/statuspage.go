package public

import (
	"context"
	"fmt"
	"time"

	"github.com/statuskite/statuskite/internal/domain"
)

// StatusAggregator computes an organization's overall status from its
// services' stored statuses.
type StatusAggregator interface {
	Aggregate(ctx context.Context, organizationID string) (domain.ServiceStatus, error)
}

// OrganizationSummary is the public-facing slice of an organization.
type OrganizationSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website,omitempty"`
}

// StatusPage is the unauthenticated view of an organization's health.
type StatusPage struct {
	Organization    OrganizationSummary  `json:"organization"`
	OverallStatus   domain.ServiceStatus `json:"overall_status"`
	Services        []domain.Service     `json:"services"`
	RecentIncidents []domain.Incident    `json:"recent_incidents"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// Service assembles public status pages.
type Service struct {
	repo       Repository
	aggregator StatusAggregator
}

// NewService creates a new public status page service.
func NewService(repo Repository, aggregator StatusAggregator) *Service {
	return &Service{repo: repo, aggregator: aggregator}
}

// GetStatusPage renders the public status page of an organization,
// resolved by ID or name. Recent incidents cover the default timeline
// window.
func (s *Service) GetStatusPage(ctx context.Context, identifier string) (*StatusPage, error) {
	org, err := s.repo.GetOrganization(ctx, identifier)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	overall, err := s.aggregator.Aggregate(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate status: %w", err)
	}

	services, err := s.repo.ListServices(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	incidents, err := s.repo.ListIncidentsSince(ctx, org.ID, now.AddDate(0, 0, -DefaultWindowDays))
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	return &StatusPage{
		Organization: OrganizationSummary{
			ID:          org.ID,
			Name:        org.Name,
			Description: org.Description,
			Website:     org.Website,
		},
		OverallStatus:   overall,
		Services:        services,
		RecentIncidents: incidents,
		GeneratedAt:     now,
	}, nil
}
