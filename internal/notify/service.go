// Package notify delivers incident events to organization-configured
// webhook endpoints through a persistent queue.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/ctxlog"
)

// Service manages webhook channels and enqueues incident events for
// delivery. It implements the incident lifecycle's notifier hook.
type Service struct {
	repo        Repository
	maxAttempts int
}

// NewService creates a new notify service.
func NewService(repo Repository, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Service{repo: repo, maxAttempts: maxAttempts}
}

// IncidentCreated enqueues an incident_created event.
func (s *Service) IncidentCreated(ctx context.Context, incident *domain.Incident) {
	s.enqueue(ctx, EventIncidentCreated, incident)
}

// IncidentUpdated enqueues an incident_status_changed event.
func (s *Service) IncidentUpdated(ctx context.Context, incident *domain.Incident) {
	s.enqueue(ctx, EventIncidentStatusChanged, incident)
}

// IncidentResolved enqueues an incident_resolved event.
func (s *Service) IncidentResolved(ctx context.Context, incident *domain.Incident) {
	s.enqueue(ctx, EventIncidentResolved, incident)
}

// enqueue fans the event out to every enabled channel of the incident's
// organization. Failures are logged, never propagated: notification
// delivery must not fail the incident mutation that triggered it.
func (s *Service) enqueue(ctx context.Context, event EventType, incident *domain.Incident) {
	log := ctxlog.FromContext(ctx)

	svcCtx, err := s.repo.GetServiceContext(ctx, incident.ServiceID)
	if err != nil {
		log.Error("failed to resolve service context for notification",
			"incident_id", incident.ID, "error", err)
		return
	}

	channels, err := s.repo.ListEnabledChannels(ctx, svcCtx.OrganizationID)
	if err != nil {
		log.Error("failed to list webhook channels",
			"organization_id", svcCtx.OrganizationID, "error", err)
		return
	}
	if len(channels) == 0 {
		return
	}

	payload := Payload{
		Event:            event,
		IncidentID:       incident.ID,
		IncidentTitle:    incident.Title,
		IncidentStatus:   string(incident.Status),
		IncidentImpact:   string(incident.Impact),
		ServiceID:        svcCtx.ServiceID,
		ServiceName:      svcCtx.ServiceName,
		OrganizationID:   svcCtx.OrganizationID,
		OrganizationName: svcCtx.OrganizationName,
		OccurredAt:       time.Now().UTC(),
	}

	items := make([]QueueItem, 0, len(channels))
	for _, channel := range channels {
		items = append(items, QueueItem{
			ID:          uuid.NewString(),
			ChannelID:   channel.ID,
			IncidentID:  incident.ID,
			EventType:   event,
			Payload:     payload,
			Status:      QueueStatusPending,
			MaxAttempts: s.maxAttempts,
		})
	}

	if err := s.repo.Enqueue(ctx, items); err != nil {
		log.Error("failed to enqueue notifications",
			"incident_id", incident.ID, "count", len(items), "error", err)
		return
	}
	recordEnqueued(string(event), len(items))

	log.Debug("notifications enqueued",
		"incident_id", incident.ID,
		"event", string(event),
		"channels", len(items))
}

// CreateChannelInput holds data for registering a webhook channel.
type CreateChannelInput struct {
	Name string
	URL  string
}

// CreateChannel registers a webhook endpoint for an organization.
func (s *Service) CreateChannel(ctx context.Context, organizationID string, input CreateChannelInput) (*domain.WebhookChannel, error) {
	channel := &domain.WebhookChannel{
		OrganizationID: organizationID,
		Name:           input.Name,
		URL:            input.URL,
		IsEnabled:      true,
	}
	if err := s.repo.CreateChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return channel, nil
}

// ListChannels retrieves the organization's webhook channels.
func (s *Service) ListChannels(ctx context.Context, organizationID string) ([]domain.WebhookChannel, error) {
	return s.repo.ListChannels(ctx, organizationID)
}

// UpdateChannelInput holds partial webhook channel fields.
type UpdateChannelInput struct {
	Name      *string
	URL       *string
	IsEnabled *bool
}

// UpdateChannel applies the supplied fields to a webhook channel.
func (s *Service) UpdateChannel(ctx context.Context, organizationID, channelID string, input UpdateChannelInput) (*domain.WebhookChannel, error) {
	channel, err := s.repo.GetChannel(ctx, organizationID, channelID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		channel.Name = *input.Name
	}
	if input.URL != nil {
		channel.URL = *input.URL
	}
	if input.IsEnabled != nil {
		channel.IsEnabled = *input.IsEnabled
	}

	if err := s.repo.UpdateChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("update channel: %w", err)
	}
	return channel, nil
}

// DeleteChannel removes a webhook channel and its queued deliveries.
func (s *Service) DeleteChannel(ctx context.Context, organizationID, channelID string) error {
	return s.repo.DeleteChannel(ctx, organizationID, channelID)
}
