// Package identity manages organization membership: who belongs to an
// organization, whether they have been approved, and what role they hold.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/ctxlog"
)

// Service implements membership business logic.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetUser resolves a user by ID. It backs the request actor middleware.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateAdminTx creates the founding admin of a new organization inside
// the caller's transaction. The admin is approved immediately, there is
// nobody else to approve them.
func (s *Service) CreateAdminTx(ctx context.Context, tx pgx.Tx, organizationID, email, fullName string) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		OrganizationID: organizationID,
		Email:          email,
		FullName:       fullName,
		Role:           domain.RoleAdmin,
		Status:         domain.UserStatusApproved,
		ApprovedAt:     &now,
	}
	if err := s.repo.CreateUserTx(ctx, tx, user); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}

// Join registers a new member of an organization. The membership starts
// pending with the viewer role until an admin approves it.
func (s *Service) Join(ctx context.Context, organizationID, email, fullName string) (*domain.User, error) {
	user := &domain.User{
		OrganizationID: organizationID,
		Email:          email,
		FullName:       fullName,
		Role:           domain.RoleViewer,
		Status:         domain.UserStatusPending,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	ctxlog.FromContext(ctx).Info("membership requested",
		"user_id", user.ID,
		"organization_id", organizationID)
	return user, nil
}

// ListMembers returns all members of an organization.
func (s *Service) ListMembers(ctx context.Context, organizationID string) ([]domain.User, error) {
	return s.repo.ListMembers(ctx, organizationID)
}

// ListPending returns memberships awaiting approval.
func (s *Service) ListPending(ctx context.Context, organizationID string) ([]domain.User, error) {
	return s.repo.ListMembersByStatus(ctx, organizationID, domain.UserStatusPending)
}

// Approve marks a pending membership as approved by the acting admin.
func (s *Service) Approve(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	return s.decide(ctx, actor, userID, domain.UserStatusApproved)
}

// Reject marks a pending membership as rejected by the acting admin.
func (s *Service) Reject(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	return s.decide(ctx, actor, userID, domain.UserStatusRejected)
}

func (s *Service) decide(ctx context.Context, actor *domain.User, userID string, decision domain.UserStatus) (*domain.User, error) {
	user, err := s.memberOf(ctx, actor.OrganizationID, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != domain.UserStatusPending {
		return nil, ErrNotPending
	}

	now := time.Now().UTC()
	user.Status = decision
	user.ApprovedBy = &actor.ID
	user.ApprovedAt = &now

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update membership: %w", err)
	}

	ctxlog.FromContext(ctx).Info("membership decided",
		"user_id", user.ID,
		"decision", string(decision),
		"decided_by", actor.ID)
	return user, nil
}

// UpdateRole changes a member's role. Admins cannot change their own
// role, otherwise an organization could end up without any admin.
func (s *Service) UpdateRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if actor.ID == userID {
		return nil, ErrOwnRole
	}

	user, err := s.memberOf(ctx, actor.OrganizationID, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	return user, nil
}

// memberOf loads a user and verifies they belong to the given
// organization. Cross-organization IDs behave exactly like unknown ones.
func (s *Service) memberOf(ctx context.Context, organizationID, userID string) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID != organizationID {
		return nil, ErrUserNotFound
	}
	return user, nil
}
