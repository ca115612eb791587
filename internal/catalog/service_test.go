package catalog

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
	services map[string]*domain.Service
	nextID   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{services: make(map[string]*domain.Service)}
}

func (m *mockRepository) addService(organizationID, name string, status domain.ServiceStatus) *domain.Service {
	m.nextID++
	service := &domain.Service{
		ID:               fmt.Sprintf("svc-%d", m.nextID),
		OrganizationID:   organizationID,
		Name:             name,
		Status:           status,
		UptimePercentage: 99.9,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	m.services[service.ID] = service
	return service
}

func (m *mockRepository) CreateService(_ context.Context, service *domain.Service) error {
	m.nextID++
	service.ID = fmt.Sprintf("svc-%d", m.nextID)
	service.CreatedAt = time.Now().UTC()
	service.UpdatedAt = service.CreatedAt
	copied := *service
	m.services[service.ID] = &copied
	return nil
}

func (m *mockRepository) GetService(_ context.Context, organizationID, serviceID string) (*domain.Service, error) {
	service, ok := m.services[serviceID]
	if !ok || service.OrganizationID != organizationID {
		return nil, ErrServiceNotFound
	}
	copied := *service
	return &copied, nil
}

func (m *mockRepository) ListServices(_ context.Context, organizationID string) ([]domain.Service, error) {
	var out []domain.Service
	for _, service := range m.services {
		if service.OrganizationID == organizationID {
			out = append(out, *service)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateService(_ context.Context, service *domain.Service) error {
	existing, ok := m.services[service.ID]
	if !ok || existing.OrganizationID != service.OrganizationID {
		return ErrServiceNotFound
	}
	copied := *service
	copied.UpdatedAt = time.Now().UTC()
	m.services[service.ID] = &copied
	return nil
}

func (m *mockRepository) DeleteService(_ context.Context, organizationID, serviceID string) error {
	service, ok := m.services[serviceID]
	if !ok || service.OrganizationID != organizationID {
		return ErrServiceNotFound
	}
	delete(m.services, serviceID)
	return nil
}

func TestService_Create(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	created, err := service.Create(context.Background(), "org-1", CreateInput{Name: "API", Description: "Public API"})
	require.NoError(t, err)

	assert.Equal(t, domain.ServiceStatusOperational, created.Status)
	assert.Equal(t, 99.9, created.UptimePercentage)
	assert.Equal(t, "org-1", created.OrganizationID)
}

func TestService_Update_Partial(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API", domain.ServiceStatusDegraded)
	service := NewService(repo)

	name := "Public API"
	updated, err := service.Update(context.Background(), "org-1", svc.ID, UpdateInput{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Public API", updated.Name)
	assert.Equal(t, domain.ServiceStatusDegraded, updated.Status)
	assert.Equal(t, 99.9, updated.UptimePercentage)
}

func TestService_OverrideStatus_Maintenance(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API", domain.ServiceStatusOperational)
	service := NewService(repo)

	updated, err := service.OverrideStatus(context.Background(), "org-1", svc.ID, domain.ServiceStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusMaintenance, updated.Status)
}

func TestService_OverrideStatus_Invalid(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API", domain.ServiceStatusOperational)
	service := NewService(repo)

	_, err := service.OverrideStatus(context.Background(), "org-1", svc.ID, domain.ServiceStatus("down"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_CrossOrganizationIsolation(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API", domain.ServiceStatusOperational)
	service := NewService(repo)

	_, err := service.Get(context.Background(), "org-2", svc.ID)
	require.ErrorIs(t, err, ErrServiceNotFound)

	err = service.Delete(context.Background(), "org-2", svc.ID)
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestService_Delete(t *testing.T) {
	repo := newMockRepository()
	svc := repo.addService("org-1", "API", domain.ServiceStatusOperational)
	service := NewService(repo)

	require.NoError(t, service.Delete(context.Background(), "org-1", svc.ID))

	_, err := service.Get(context.Background(), "org-1", svc.ID)
	require.ErrorIs(t, err, ErrServiceNotFound)
}
