package identity

import (
	"context"

	"github.com/andela-jare/CP3-DMS/internal/domain"
)

// Repository defines the interface for user and role data operations.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id string) error
	SetSessionToken(ctx context.Context, userID, token string) error

	CreateRole(ctx context.Context, role *domain.Role) error
	GetRoleByID(ctx context.Context, id string) (*domain.Role, error)
	GetRoleByTitle(ctx context.Context, title string) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}
