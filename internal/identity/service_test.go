package identity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	users  map[string]*domain.User
	nextID int
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[string]*domain.User)}
}

func (m *mockRepository) addUser(organizationID string, role domain.Role, status domain.UserStatus) *domain.User {
	m.nextID++
	user := &domain.User{
		ID:             fmt.Sprintf("user-%d", m.nextID),
		OrganizationID: organizationID,
		Email:          fmt.Sprintf("user%d@example.test", m.nextID),
		Role:           role,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	m.users[user.ID] = user
	return user
}

func (m *mockRepository) create(user *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	return m.create(user)
}

func (m *mockRepository) CreateUserTx(_ context.Context, _ pgx.Tx, user *domain.User) error {
	return m.create(user)
}

func (m *mockRepository) GetUser(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockRepository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) UpdateUser(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	copied := *user
	copied.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = &copied
	return nil
}

func (m *mockRepository) ListMembers(_ context.Context, organizationID string) ([]domain.User, error) {
	var out []domain.User
	for _, user := range m.users {
		if user.OrganizationID == organizationID {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (m *mockRepository) ListMembersByStatus(_ context.Context, organizationID string, status domain.UserStatus) ([]domain.User, error) {
	var out []domain.User
	for _, user := range m.users {
		if user.OrganizationID == organizationID && user.Status == status {
			out = append(out, *user)
		}
	}
	return out, nil
}

func TestService_Join(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	user, err := service.Join(context.Background(), "org-1", "new@example.test", "New Member")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleViewer, user.Role)
	assert.Equal(t, domain.UserStatusPending, user.Status)
	assert.False(t, user.IsApproved())
}

func TestService_Approve(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	pending := repo.addUser("org-1", domain.RoleViewer, domain.UserStatusPending)
	service := NewService(repo)

	user, err := service.Approve(context.Background(), admin, pending.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.UserStatusApproved, user.Status)
	require.NotNil(t, user.ApprovedBy)
	assert.Equal(t, admin.ID, *user.ApprovedBy)
	assert.NotNil(t, user.ApprovedAt)
}

func TestService_Approve_NotPending(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	approved := repo.addUser("org-1", domain.RoleEditor, domain.UserStatusApproved)
	service := NewService(repo)

	_, err := service.Approve(context.Background(), admin, approved.ID)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestService_Approve_CrossOrganization(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	other := repo.addUser("org-2", domain.RoleViewer, domain.UserStatusPending)
	service := NewService(repo)

	_, err := service.Approve(context.Background(), admin, other.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_Reject(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	pending := repo.addUser("org-1", domain.RoleViewer, domain.UserStatusPending)
	service := NewService(repo)

	user, err := service.Reject(context.Background(), admin, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusRejected, user.Status)
}

func TestService_UpdateRole(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	member := repo.addUser("org-1", domain.RoleViewer, domain.UserStatusApproved)
	service := NewService(repo)

	user, err := service.UpdateRole(context.Background(), admin, member.ID, domain.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, user.Role)
}

func TestService_UpdateRole_OwnRole(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	service := NewService(repo)

	_, err := service.UpdateRole(context.Background(), admin, admin.ID, domain.RoleViewer)
	require.ErrorIs(t, err, ErrOwnRole)
}

func TestService_UpdateRole_Invalid(t *testing.T) {
	repo := newMockRepository()
	admin := repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	member := repo.addUser("org-1", domain.RoleViewer, domain.UserStatusApproved)
	service := NewService(repo)

	_, err := service.UpdateRole(context.Background(), admin, member.ID, domain.Role("owner"))
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestService_CreateAdminTx(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	admin, err := service.CreateAdminTx(context.Background(), nil, "org-1", "founder@example.test", "Ada Founder")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.IsApproved())
	assert.NotNil(t, admin.ApprovedAt)
	assert.Nil(t, admin.ApprovedBy)
}

func TestService_ListPending(t *testing.T) {
	repo := newMockRepository()
	repo.addUser("org-1", domain.RoleAdmin, domain.UserStatusApproved)
	pending := repo.addUser("org-1", domain.RoleViewer, domain.UserStatusPending)
	repo.addUser("org-2", domain.RoleViewer, domain.UserStatusPending)
	service := NewService(repo)

	users, err := service.ListPending(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, pending.ID, users[0].ID)
}
