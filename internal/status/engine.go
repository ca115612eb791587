package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/ctxlog"
)

// Engine keeps persisted service status consistent with each service's
// live active-incident set, and aggregates per-service statuses into an
// organization-wide status.
//
// Recalculation is idempotent and stateless: it always re-reads the
// incident set fresh, so a stale write from a lost race is corrected by
// the next recalculation.
type Engine struct {
	repo Repository
}

// NewEngine creates a new status engine.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Recalculate re-derives one service's status from its active incidents
// and persists it only when it actually changed. Returns
// ErrServiceNotFound when the service is absent — callers racing a
// service deletion should treat that as a no-op.
func (e *Engine) Recalculate(ctx context.Context, serviceID string) (*domain.Service, error) {
	svc, err := e.repo.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	active, err := e.repo.ListActiveIncidents(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}

	return e.apply(ctx, svc, active, func(newStatus domain.ServiceStatus, at time.Time) error {
		return e.repo.UpdateServiceStatus(ctx, svc.ID, newStatus, at)
	})
}

// RecalculateTx is Recalculate inside a caller-owned transaction, so the
// triggering incident mutation and the derived-status write commit
// atomically for the service.
func (e *Engine) RecalculateTx(ctx context.Context, tx pgx.Tx, serviceID string) (*domain.Service, error) {
	svc, err := e.repo.GetServiceTx(ctx, tx, serviceID)
	if err != nil {
		return nil, err
	}

	active, err := e.repo.ListActiveIncidentsTx(ctx, tx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list active incidents: %w", err)
	}

	return e.apply(ctx, svc, active, func(newStatus domain.ServiceStatus, at time.Time) error {
		return e.repo.UpdateServiceStatusTx(ctx, tx, svc.ID, newStatus, at)
	})
}

// apply computes the derived status and persists it through write when it
// differs from the stored one. The returned service reflects the stored
// state after the call.
func (e *Engine) apply(ctx context.Context, svc *domain.Service, active []domain.Incident, write func(domain.ServiceStatus, time.Time) error) (*domain.Service, error) {
	newStatus := FromIncidents(active)
	if newStatus == svc.Status {
		recordRecalculation(false)
		return svc, nil
	}

	now := time.Now().UTC()
	if err := write(newStatus, now); err != nil {
		return nil, fmt.Errorf("update service status: %w", err)
	}

	recordRecalculation(true)
	recordTransition(string(svc.Status), string(newStatus))
	ctxlog.FromContext(ctx).Info("service status recalculated",
		"service_id", svc.ID,
		"old_status", svc.Status,
		"new_status", newStatus,
		"active_incidents", len(active),
	)

	svc.Status = newStatus
	svc.UpdatedAt = now
	return svc, nil
}

// RecalculateAll re-derives every service of an organization and returns
// how many stored statuses actually changed. Each service is handled
// independently: there is no batch atomicity, and a service deleted
// concurrently is skipped.
func (e *Engine) RecalculateAll(ctx context.Context, organizationID string) (int, error) {
	services, err := e.repo.ListServices(ctx, organizationID)
	if err != nil {
		return 0, fmt.Errorf("list services: %w", err)
	}

	changed := 0
	for i := range services {
		before := services[i].Status
		svc, err := e.Recalculate(ctx, services[i].ID)
		if err != nil {
			if errors.Is(err, ErrServiceNotFound) {
				continue
			}
			return changed, fmt.Errorf("recalculate service %s: %w", services[i].ID, err)
		}
		if svc.Status != before {
			changed++
		}
	}
	return changed, nil
}

// Aggregate reduces the stored statuses of an organization's services
// into one overall status. It trusts the recalculator to keep per-service
// status fresh; it does not re-derive from incidents. An organization
// without services is operational.
func (e *Engine) Aggregate(ctx context.Context, organizationID string) (domain.ServiceStatus, error) {
	services, err := e.repo.ListServices(ctx, organizationID)
	if err != nil {
		return "", fmt.Errorf("list services: %w", err)
	}

	present := make(map[domain.ServiceStatus]bool, len(services))
	for i := range services {
		present[services[i].Status] = true
	}

	for _, s := range statusPrecedence {
		if present[s] {
			return s, nil
		}
	}
	return domain.ServiceStatusOperational, nil
}
