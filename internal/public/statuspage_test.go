package public

import (
	"context"
	"testing"
	"time"

	"github.com/statuskite/statuskite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAggregator struct {
	status domain.ServiceStatus
}

func (m *mockAggregator) Aggregate(_ context.Context, _ string) (domain.ServiceStatus, error) {
	return m.status, nil
}

func TestService_GetStatusPage(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")
	org.Description = "Everything Acme"
	org.SubscriptionCode = "secret-code"
	svc := repo.addService(org.ID, "API", domain.ServiceStatusDegraded)

	now := time.Now().UTC()
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactMedium, now.Add(-2*time.Hour), nil)
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactLow, now.AddDate(0, 0, -40), nil)

	service := NewService(repo, &mockAggregator{status: domain.ServiceStatusDegraded})

	page, err := service.GetStatusPage(context.Background(), "Acme")
	require.NoError(t, err)

	assert.Equal(t, org.ID, page.Organization.ID)
	assert.Equal(t, "Everything Acme", page.Organization.Description)
	assert.Equal(t, domain.ServiceStatusDegraded, page.OverallStatus)
	require.Len(t, page.Services, 1)
	require.Len(t, page.RecentIncidents, 1)
}

func TestService_GetStatusPage_NotFound(t *testing.T) {
	service := NewService(newMockRepository(), &mockAggregator{})

	_, err := service.GetStatusPage(context.Background(), "missing")
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}
