package identity

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/statuskite/statuskite/internal/domain"
)

// Repository defines the interface for user storage.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	CreateUserTx(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListMembers(ctx context.Context, organizationID string) ([]domain.User, error)
	ListMembersByStatus(ctx context.Context, organizationID string, status domain.UserStatus) ([]domain.User, error)
}
