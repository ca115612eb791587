// Package incidents implements the incident lifecycle: creation,
// progress updates, resolution and removal. Every write that can change
// a service's derived status recalculates it in the same transaction.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/ctxlog"
)

// Recalculator rederives a service's stored status from its active
// incidents inside the caller's transaction.
type Recalculator interface {
	RecalculateTx(ctx context.Context, tx pgx.Tx, serviceID string) (*domain.Service, error)
}

// Notifier receives incident lifecycle events. Implementations must not
// block; delivery happens out of band.
type Notifier interface {
	IncidentCreated(ctx context.Context, incident *domain.Incident)
	IncidentUpdated(ctx context.Context, incident *domain.Incident)
	IncidentResolved(ctx context.Context, incident *domain.Incident)
}

// Service implements incident business logic.
type Service struct {
	repo     Repository
	recalc   Recalculator
	notifier Notifier
}

// NewService creates a new incident service. The notifier may be nil.
func NewService(repo Repository, recalc Recalculator, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		recalc:   recalc,
		notifier: notifier,
	}
}

// CreateInput holds data for opening an incident.
type CreateInput struct {
	ServiceID   string
	Title       string
	Description string
	Impact      domain.IncidentImpact
}

// Create opens a new incident against a service of the actor's
// organization. The incident starts investigating and the service's
// status is rederived before the transaction commits.
func (s *Service) Create(ctx context.Context, actor *domain.User, input CreateInput) (*domain.Incident, error) {
	if !input.Impact.IsValid() {
		return nil, ErrInvalidImpact
	}
	if _, err := s.repo.GetService(ctx, actor.OrganizationID, input.ServiceID); err != nil {
		return nil, err
	}

	incident := &domain.Incident{
		ServiceID:   input.ServiceID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.IncidentStatusInvestigating,
		Impact:      input.Impact,
		CreatedBy:   actor.ID,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateIncidentTx(ctx, tx, incident); err != nil {
			return fmt.Errorf("create incident: %w", err)
		}
		if _, err := s.recalc.RecalculateTx(ctx, tx, incident.ServiceID); err != nil {
			return fmt.Errorf("recalculate service status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("incident created",
		"incident_id", incident.ID,
		"service_id", incident.ServiceID,
		"impact", string(incident.Impact))

	if s.notifier != nil {
		s.notifier.IncidentCreated(ctx, incident)
	}
	return incident, nil
}

// Get retrieves an incident of the organization.
func (s *Service) Get(ctx context.Context, organizationID, incidentID string) (*domain.Incident, error) {
	return s.repo.GetIncident(ctx, organizationID, incidentID)
}

// List retrieves all incidents of an organization, newest first.
func (s *Service) List(ctx context.Context, organizationID string) ([]domain.Incident, error) {
	return s.repo.ListIncidents(ctx, organizationID)
}

// ListByService retrieves all incidents of one service.
func (s *Service) ListByService(ctx context.Context, organizationID, serviceID string) ([]domain.Incident, error) {
	if _, err := s.repo.GetService(ctx, organizationID, serviceID); err != nil {
		return nil, err
	}
	return s.repo.ListServiceIncidents(ctx, organizationID, serviceID)
}

// ListActive retrieves unresolved incidents of an organization.
func (s *Service) ListActive(ctx context.Context, organizationID string) ([]domain.Incident, error) {
	return s.repo.ListActiveIncidents(ctx, organizationID)
}

// GetStatistics summarizes incident counts for an organization.
func (s *Service) GetStatistics(ctx context.Context, organizationID string) (*Statistics, error) {
	return s.repo.GetStatistics(ctx, organizationID)
}

// UpdateInput holds partial incident fields.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.IncidentStatus
	Impact      *domain.IncidentImpact
}

// Update applies the supplied fields to an incident. Status transitions
// are unrestricted; reopening a resolved incident clears its resolution
// timestamp. The service status is rederived only when the update could
// change it.
func (s *Service) Update(ctx context.Context, organizationID, incidentID string, input UpdateInput) (*domain.Incident, error) {
	incident, err := s.repo.GetIncident(ctx, organizationID, incidentID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		incident.Title = *input.Title
	}
	if input.Description != nil {
		incident.Description = *input.Description
	}

	statusChanged := false
	if input.Status != nil && *input.Status != incident.Status {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		s.transition(incident, *input.Status)
		statusChanged = true
	}

	impactChanged := false
	if input.Impact != nil && *input.Impact != incident.Impact {
		if !input.Impact.IsValid() {
			return nil, ErrInvalidImpact
		}
		incident.Impact = *input.Impact
		impactChanged = true
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.UpdateIncidentTx(ctx, tx, incident); err != nil {
			return fmt.Errorf("update incident: %w", err)
		}
		if statusChanged || impactChanged {
			if _, err := s.recalc.RecalculateTx(ctx, tx, incident.ServiceID); err != nil {
				return fmt.Errorf("recalculate service status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyChange(ctx, incident, statusChanged)
	return incident, nil
}

// UpdateStatus moves an incident to a new lifecycle state, optionally
// appending a timestamped progress note to its description. The service
// status is always rederived.
func (s *Service) UpdateStatus(ctx context.Context, organizationID, incidentID string, status domain.IncidentStatus, message string) (*domain.Incident, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	incident, err := s.repo.GetIncident(ctx, organizationID, incidentID)
	if err != nil {
		return nil, err
	}

	statusChanged := status != incident.Status
	s.transition(incident, status)
	if message != "" {
		incident.Description += progressNote(time.Now().UTC(), message)
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.UpdateIncidentTx(ctx, tx, incident); err != nil {
			return fmt.Errorf("update incident: %w", err)
		}
		if _, err := s.recalc.RecalculateTx(ctx, tx, incident.ServiceID); err != nil {
			return fmt.Errorf("recalculate service status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("incident status updated",
		"incident_id", incident.ID,
		"status", string(incident.Status))

	s.notifyChange(ctx, incident, statusChanged)
	return incident, nil
}

// Delete removes an incident and rederives the service status without it.
func (s *Service) Delete(ctx context.Context, organizationID, incidentID string) error {
	incident, err := s.repo.GetIncident(ctx, organizationID, incidentID)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.DeleteIncidentTx(ctx, tx, incident.ID); err != nil {
			return fmt.Errorf("delete incident: %w", err)
		}
		if _, err := s.recalc.RecalculateTx(ctx, tx, incident.ServiceID); err != nil {
			return fmt.Errorf("recalculate service status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Info("incident deleted",
		"incident_id", incident.ID,
		"service_id", incident.ServiceID)
	return nil
}

// transition moves the incident to the target state and keeps the
// resolution timestamp consistent with it.
func (s *Service) transition(incident *domain.Incident, status domain.IncidentStatus) {
	if status == domain.IncidentStatusResolved {
		if incident.ResolvedAt == nil {
			now := time.Now().UTC()
			incident.ResolvedAt = &now
		}
	} else {
		incident.ResolvedAt = nil
	}
	incident.Status = status
}

func (s *Service) notifyChange(ctx context.Context, incident *domain.Incident, statusChanged bool) {
	if s.notifier == nil {
		return
	}
	if statusChanged && incident.Status == domain.IncidentStatusResolved {
		s.notifier.IncidentResolved(ctx, incident)
		return
	}
	s.notifier.IncidentUpdated(ctx, incident)
}

func (s *Service) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			ctxlog.FromContext(ctx).Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// progressNote renders the timestamped note appended to an incident's
// description on a status update with a message.
func progressNote(now time.Time, message string) string {
	return fmt.Sprintf("\n\n**Update (%s UTC):** %s", now.Format("2006-01-02 15:04:05"), message)
}
