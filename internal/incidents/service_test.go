package incidents

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type mockRepository struct {
	services  map[string]*domain.Service
	incidents map[string]*domain.Incident
	tx        *fakeTx
	nextID    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		services:  make(map[string]*domain.Service),
		incidents: make(map[string]*domain.Incident),
	}
}

func (m *mockRepository) addService(organizationID, name string) *domain.Service {
	m.nextID++
	service := &domain.Service{
		ID:             fmt.Sprintf("svc-%d", m.nextID),
		OrganizationID: organizationID,
		Name:           name,
		Status:         domain.ServiceStatusOperational,
	}
	m.services[service.ID] = service
	return service
}

func (m *mockRepository) addIncident(serviceID string, status domain.IncidentStatus, impact domain.IncidentImpact) *domain.Incident {
	m.nextID++
	incident := &domain.Incident{
		ID:        fmt.Sprintf("inc-%d", m.nextID),
		ServiceID: serviceID,
		Title:     "incident",
		Status:    status,
		Impact:    impact,
		CreatedBy: "user-1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if status == domain.IncidentStatusResolved {
		now := time.Now().UTC()
		incident.ResolvedAt = &now
	}
	m.incidents[incident.ID] = incident
	return incident
}

func (m *mockRepository) organizationOf(serviceID string) string {
	if service, ok := m.services[serviceID]; ok {
		return service.OrganizationID
	}
	return ""
}

func (m *mockRepository) GetIncident(_ context.Context, organizationID, incidentID string) (*domain.Incident, error) {
	incident, ok := m.incidents[incidentID]
	if !ok || m.organizationOf(incident.ServiceID) != organizationID {
		return nil, ErrIncidentNotFound
	}
	copied := *incident
	return &copied, nil
}

func (m *mockRepository) ListIncidents(_ context.Context, organizationID string) ([]domain.Incident, error) {
	var out []domain.Incident
	for _, incident := range m.incidents {
		if m.organizationOf(incident.ServiceID) == organizationID {
			out = append(out, *incident)
		}
	}
	return out, nil
}

func (m *mockRepository) ListServiceIncidents(_ context.Context, organizationID, serviceID string) ([]domain.Incident, error) {
	var out []domain.Incident
	for _, incident := range m.incidents {
		if incident.ServiceID == serviceID && m.organizationOf(serviceID) == organizationID {
			out = append(out, *incident)
		}
	}
	return out, nil
}

func (m *mockRepository) ListActiveIncidents(_ context.Context, organizationID string) ([]domain.Incident, error) {
	var out []domain.Incident
	for _, incident := range m.incidents {
		if incident.IsActive() && m.organizationOf(incident.ServiceID) == organizationID {
			out = append(out, *incident)
		}
	}
	return out, nil
}

func (m *mockRepository) GetStatistics(_ context.Context, organizationID string) (*Statistics, error) {
	var stats Statistics
	for _, incident := range m.incidents {
		if m.organizationOf(incident.ServiceID) != organizationID {
			continue
		}
		stats.Total++
		if incident.IsActive() {
			stats.Active++
			if incident.Impact == domain.IncidentImpactCritical {
				stats.CriticalActive++
			}
		}
	}
	stats.Resolved = stats.Total - stats.Active
	return &stats, nil
}

func (m *mockRepository) GetService(_ context.Context, organizationID, serviceID string) (*domain.Service, error) {
	service, ok := m.services[serviceID]
	if !ok || service.OrganizationID != organizationID {
		return nil, ErrServiceNotFound
	}
	copied := *service
	return &copied, nil
}

func (m *mockRepository) BeginTx(_ context.Context) (pgx.Tx, error) {
	m.tx = &fakeTx{}
	return m.tx, nil
}

func (m *mockRepository) CreateIncidentTx(_ context.Context, _ pgx.Tx, incident *domain.Incident) error {
	m.nextID++
	incident.ID = fmt.Sprintf("inc-%d", m.nextID)
	incident.CreatedAt = time.Now().UTC()
	incident.UpdatedAt = incident.CreatedAt
	copied := *incident
	m.incidents[incident.ID] = &copied
	return nil
}

func (m *mockRepository) UpdateIncidentTx(_ context.Context, _ pgx.Tx, incident *domain.Incident) error {
	if _, ok := m.incidents[incident.ID]; !ok {
		return ErrIncidentNotFound
	}
	copied := *incident
	copied.UpdatedAt = time.Now().UTC()
	m.incidents[incident.ID] = &copied
	return nil
}

func (m *mockRepository) DeleteIncidentTx(_ context.Context, _ pgx.Tx, incidentID string) error {
	if _, ok := m.incidents[incidentID]; !ok {
		return ErrIncidentNotFound
	}
	delete(m.incidents, incidentID)
	return nil
}

type mockRecalculator struct {
	calls []string
	err   error
}

func (m *mockRecalculator) RecalculateTx(_ context.Context, _ pgx.Tx, serviceID string) (*domain.Service, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, serviceID)
	return &domain.Service{ID: serviceID}, nil
}

type recordingNotifier struct {
	created  []string
	updated  []string
	resolved []string
}

func (n *recordingNotifier) IncidentCreated(_ context.Context, incident *domain.Incident) {
	n.created = append(n.created, incident.ID)
}

func (n *recordingNotifier) IncidentUpdated(_ context.Context, incident *domain.Incident) {
	n.updated = append(n.updated, incident.ID)
}

func (n *recordingNotifier) IncidentResolved(_ context.Context, incident *domain.Incident) {
	n.resolved = append(n.resolved, incident.ID)
}

func editor(organizationID string) *domain.User {
	return &domain.User{
		ID:             "user-1",
		OrganizationID: organizationID,
		Role:           domain.RoleEditor,
		Status:         domain.UserStatusApproved,
	}
}

func TestService_Create(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	recalc := &mockRecalculator{}
	notifier := &recordingNotifier{}
	service := NewService(repo, recalc, notifier)

	incident, err := service.Create(context.Background(), editor("org-1"), CreateInput{
		ServiceID: svc.ID,
		Title:     "API errors",
		Impact:    domain.IncidentImpactHigh,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IncidentStatusInvestigating, incident.Status)
	assert.Equal(t, "user-1", incident.CreatedBy)
	assert.Nil(t, incident.ResolvedAt)
	assert.Equal(t, []string{svc.ID}, recalc.calls)
	assert.True(t, repo.tx.committed)
	assert.Equal(t, []string{incident.ID}, notifier.created)
}

func TestService_Create_InvalidImpact(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	service := NewService(repo, &mockRecalculator{}, nil)

	_, err := service.Create(context.Background(), editor("org-1"), CreateInput{
		ServiceID: svc.ID,
		Title:     "API errors",
		Impact:    domain.IncidentImpact("catastrophic"),
	})
	require.ErrorIs(t, err, ErrInvalidImpact)
}

func TestService_Create_CrossOrganizationService(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-2", "API")
	service := NewService(repo, &mockRecalculator{}, nil)

	_, err := service.Create(context.Background(), editor("org-1"), CreateInput{
		ServiceID: svc.ID,
		Title:     "API errors",
		Impact:    domain.IncidentImpactLow,
	})
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestService_Create_RecalcFailureRollsBack(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	recalc := &mockRecalculator{err: fmt.Errorf("boom")}
	service := NewService(repo, recalc, nil)

	_, err := service.Create(context.Background(), editor("org-1"), CreateInput{
		ServiceID: svc.ID,
		Title:     "API errors",
		Impact:    domain.IncidentImpactLow,
	})
	require.Error(t, err)
	assert.False(t, repo.tx.committed)
	assert.True(t, repo.tx.rolledBack)
}

func TestService_Update_TitleOnlySkipsRecalculation(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	incident := repo.addIncident(svc.ID, domain.IncidentStatusInvestigating, domain.IncidentImpactHigh)
	recalc := &mockRecalculator{}
	service := NewService(repo, recalc, nil)

	title := "Elevated API errors"
	updated, err := service.Update(context.Background(), "org-1", incident.ID, UpdateInput{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Elevated API errors", updated.Title)
	assert.Empty(t, recalc.calls)
}

func TestService_Update_ImpactChangeRecalculates(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	incident := repo.addIncident(svc.ID, domain.IncidentStatusInvestigating, domain.IncidentImpactLow)
	recalc := &mockRecalculator{}
	service := NewService(repo, recalc, nil)

	impact := domain.IncidentImpactCritical
	updated, err := service.Update(context.Background(), "org-1", incident.ID, UpdateInput{Impact: &impact})
	require.NoError(t, err)

	assert.Equal(t, domain.IncidentImpactCritical, updated.Impact)
	assert.Equal(t, []string{svc.ID}, recalc.calls)
}

func TestService_Update_ResolveSetsTimestamp(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	incident := repo.addIncident(svc.ID, domain.IncidentStatusMonitoring, domain.IncidentImpactHigh)
	notifier := &recordingNotifier{}
	service := NewService(repo, &mockRecalculator{}, notifier)

	status := domain.IncidentStatusResolved
	updated, err := service.Update(context.Background(), "org-1", incident.ID, UpdateInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.IncidentStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, []string{incident.ID}, notifier.resolved)
	assert.Empty(t, notifier.updated)
}

func TestService_Update_ReopenClearsTimestamp(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	incident := repo.addIncident(svc.ID, domain.IncidentStatusResolved, domain.IncidentImpactHigh)
	recalc := &mockRecalculator{}
	service := NewService(repo, recalc, nil)

	status := domain.IncidentStatusInvestigating
	updated, err := service.Update(context.Background(), "org-1", incident.ID, UpdateInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.IncidentStatusInvestigating, updated.Status)
	assert.Nil(t, updated.ResolvedAt)
	assert.Equal(t, []string{svc.ID}, recalc.calls)
}

func TestService_UpdateStatus_AppendsNote(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	incident := repo.addIncident(svc.ID, domain.IncidentStatusInvestigating, domain.IncidentImpactHigh)
	incident.Description = "Initial report"
	recalc := &mockRecalculator{}
	service := NewService(repo, recalc, nil)

	updated, err := service.UpdateStatus(context.Background(), "org-1", incident.ID, domain.IncidentStatusIdentified, "Root cause found")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(updated.Description, "Initial report\n\n**Update ("))
	assert.True(t, strings.HasSuffix(updated.Description, " UTC):** Root cause found"))
	assert.Equal(t, domain.IncidentStatusIdentified, updated.Status)
	assert.Equal(t, []string{svc.ID}, recalc.calls)
}

func TestService_UpdateStatus_SameStatusStillRecalculates(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	incident := repo.addIncident(svc.ID, domain.IncidentStatusInvestigating, domain.IncidentImpactHigh)
	recalc := &mockRecalculator{}
	notifier := &recordingNotifier{}
	service := NewService(repo, recalc, notifier)

	_, err := service.UpdateStatus(context.Background(), "org-1", incident.ID, domain.IncidentStatusInvestigating, "Still looking")
	require.NoError(t, err)

	assert.Equal(t, []string{svc.ID}, recalc.calls)
	assert.Equal(t, []string{incident.ID}, notifier.updated)
	assert.Empty(t, notifier.resolved)
}

func TestService_Delete_Recalculates(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	incident := repo.addIncident(svc.ID, domain.IncidentStatusInvestigating, domain.IncidentImpactCritical)
	recalc := &mockRecalculator{}
	service := NewService(repo, recalc, nil)

	require.NoError(t, service.Delete(context.Background(), "org-1", incident.ID))

	_, err := service.Get(context.Background(), "org-1", incident.ID)
	require.ErrorIs(t, err, ErrIncidentNotFound)
	assert.Equal(t, []string{svc.ID}, recalc.calls)
}

func TestService_GetStatistics(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API")
	repo.addIncident(svc.ID, domain.IncidentStatusInvestigating, domain.IncidentImpactCritical)
	repo.addIncident(svc.ID, domain.IncidentStatusMonitoring, domain.IncidentImpactLow)
	repo.addIncident(svc.ID, domain.IncidentStatusResolved, domain.IncidentImpactCritical)
	service := NewService(repo, &mockRecalculator{}, nil)

	stats, err := service.GetStatistics(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.CriticalActive)
}

func TestProgressNote_Format(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	note := progressNote(ts, "Mitigation deployed")
	assert.Equal(t, "\n\n**Update (2025-03-14 09:26:53 UTC):** Mitigation deployed", note)
}
