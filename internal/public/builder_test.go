package public

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/statuskite/statuskite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	organizations map[string]*domain.Organization
	services      map[string][]domain.Service
	incidents     map[string][]domain.Incident
	nextID        int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		organizations: make(map[string]*domain.Organization),
		services:      make(map[string][]domain.Service),
		incidents:     make(map[string][]domain.Incident),
	}
}

func (m *mockRepository) addOrganization(name string) *domain.Organization {
	m.nextID++
	org := &domain.Organization{
		ID:     fmt.Sprintf("org-%d", m.nextID),
		Name:   name,
		Status: domain.OrganizationStatusActive,
	}
	m.organizations[org.ID] = org
	return org
}

func (m *mockRepository) addService(organizationID, name string, status domain.ServiceStatus) *domain.Service {
	m.nextID++
	service := domain.Service{
		ID:             fmt.Sprintf("svc-%d", m.nextID),
		OrganizationID: organizationID,
		Name:           name,
		Status:         status,
	}
	m.services[organizationID] = append(m.services[organizationID], service)
	return &m.services[organizationID][len(m.services[organizationID])-1]
}

func (m *mockRepository) addIncident(organizationID, serviceID string, impact domain.IncidentImpact, createdAt time.Time, resolvedAt *time.Time) *domain.Incident {
	m.nextID++
	incident := domain.Incident{
		ID:         fmt.Sprintf("inc-%d", m.nextID),
		ServiceID:  serviceID,
		Title:      "incident",
		Impact:     impact,
		Status:     domain.IncidentStatusInvestigating,
		CreatedAt:  createdAt,
		ResolvedAt: resolvedAt,
	}
	if resolvedAt != nil {
		incident.Status = domain.IncidentStatusResolved
	}
	m.incidents[organizationID] = append(m.incidents[organizationID], incident)
	return &m.incidents[organizationID][len(m.incidents[organizationID])-1]
}

func (m *mockRepository) GetOrganization(_ context.Context, identifier string) (*domain.Organization, error) {
	if org, ok := m.organizations[identifier]; ok {
		return org, nil
	}
	for _, org := range m.organizations {
		if org.Name == identifier {
			return org, nil
		}
	}
	return nil, ErrOrganizationNotFound
}

func (m *mockRepository) ListServices(_ context.Context, organizationID string) ([]domain.Service, error) {
	return m.services[organizationID], nil
}

func (m *mockRepository) ListIncidentsSince(_ context.Context, organizationID string, since time.Time) ([]domain.Incident, error) {
	var out []domain.Incident
	for _, incident := range m.incidents[organizationID] {
		if !incident.CreatedAt.Before(since) {
			out = append(out, incident)
		}
	}
	return out, nil
}

func resolvedAfter(createdAt time.Time, d time.Duration) *time.Time {
	at := createdAt.Add(d)
	return &at
}

func TestBuilder_Build_WindowExcludesOldIncidents(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")
	svc := repo.addService(org.ID, "API", domain.ServiceStatusMajorOutage)

	now := time.Now().UTC()
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactCritical, now.AddDate(0, 0, -31), nil)
	today := repo.addIncident(org.ID, svc.ID, domain.IncidentImpactHigh, now, nil)

	report, err := NewBuilder(repo).Build(context.Background(), org.ID, 30)
	require.NoError(t, err)

	require.Len(t, report.Services, 1)
	require.Len(t, report.Services[0].Blocks, 1)

	block := report.Services[0].Blocks[0]
	assert.Equal(t, today.ID, block.IncidentID)
	assert.True(t, block.IsOngoing)
	assert.Equal(t, 1, report.Summary.TotalIncidents)
	assert.Equal(t, 1, report.Summary.OngoingCount)
}

func TestBuilder_Build_MeanResolutionExcludesOngoing(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")
	svc := repo.addService(org.ID, "API", domain.ServiceStatusOperational)

	start := time.Now().UTC().Add(-24 * time.Hour)
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactHigh, start, resolvedAfter(start, 2*time.Hour))
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactMedium, start, resolvedAfter(start, 4*time.Hour))
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactCritical, start, nil)

	report, err := NewBuilder(repo).Build(context.Background(), org.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, 3.0, report.Summary.MeanResolutionHours)
	assert.Equal(t, 3, report.Summary.TotalIncidents)
	assert.Equal(t, 1, report.Summary.OngoingCount)
	assert.Equal(t, 1, report.Summary.CriticalCount)
	assert.Equal(t, 1, report.Summary.HighCount)
}

func TestBuilder_Build_BlockShape(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")
	svc := repo.addService(org.ID, "API", domain.ServiceStatusOperational)

	created := time.Now().UTC().Add(-5 * time.Hour)
	resolved := resolvedAfter(created, 90*time.Minute)
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactCritical, created, resolved)

	report, err := NewBuilder(repo).Build(context.Background(), org.ID, 7)
	require.NoError(t, err)

	block := report.Services[0].Blocks[0]
	assert.Equal(t, "#dc2626", block.Color)
	assert.Equal(t, created, block.StartTime)
	assert.Equal(t, *resolved, block.EndTime)
	assert.Equal(t, 1.5, block.DurationHours)
	assert.False(t, block.IsOngoing)
}

func TestBuilder_Build_OngoingBlocksShareEvaluationInstant(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")
	svc := repo.addService(org.ID, "API", domain.ServiceStatusDegraded)

	now := time.Now().UTC()
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactLow, now.Add(-3*time.Hour), nil)
	repo.addIncident(org.ID, svc.ID, domain.IncidentImpactMedium, now.Add(-1*time.Hour), nil)

	report, err := NewBuilder(repo).Build(context.Background(), org.ID, 7)
	require.NoError(t, err)

	blocks := report.Services[0].Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, report.GeneratedAt, blocks[0].EndTime)
	assert.Equal(t, report.GeneratedAt, blocks[1].EndTime)
}

func TestBuilder_Build_EmptyOrganization(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")

	report, err := NewBuilder(repo).Build(context.Background(), org.ID, 30)
	require.NoError(t, err)

	assert.NotNil(t, report.Services)
	assert.Empty(t, report.Services)
	assert.Equal(t, Summary{}, report.Summary)
}

func TestBuilder_Build_ServiceWithoutIncidentsHasEmptyBlocks(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")
	repo.addService(org.ID, "API", domain.ServiceStatusOperational)

	report, err := NewBuilder(repo).Build(context.Background(), org.ID, 30)
	require.NoError(t, err)

	require.Len(t, report.Services, 1)
	assert.NotNil(t, report.Services[0].Blocks)
	assert.Empty(t, report.Services[0].Blocks)
}

func TestBuilder_Build_OrganizationNotFound(t *testing.T) {
	_, err := NewBuilder(newMockRepository()).Build(context.Background(), "missing", 30)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestBuilder_Build_ResolvesByName(t *testing.T) {
	repo := newMockRepository()
	org := repo.addOrganization("Acme")

	report, err := NewBuilder(repo).Build(context.Background(), "Acme", 0)
	require.NoError(t, err)
	assert.Equal(t, org.ID, report.OrganizationID)
	assert.Equal(t, DefaultWindowDays, report.WindowDays)
}

func TestBuilder_Legend(t *testing.T) {
	report, err := NewBuilder(newMockRepositoryWithOrg()).Build(context.Background(), "org-1", 30)
	require.NoError(t, err)

	require.Len(t, report.Legend, 4)
	assert.Equal(t, domain.IncidentImpactCritical, report.Legend[0].Impact)
	assert.Equal(t, "#dc2626", report.Legend[0].Color)
	assert.Equal(t, domain.IncidentImpactLow, report.Legend[3].Impact)
	assert.Equal(t, "#16a34a", report.Legend[3].Color)
}

func newMockRepositoryWithOrg() *mockRepository {
	repo := newMockRepository()
	repo.addOrganization("Acme")
	return repo
}

func TestImpactColor_Unknown(t *testing.T) {
	assert.Equal(t, "#6b7280", ImpactColor(domain.IncidentImpact("unknown")))
}
