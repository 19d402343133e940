package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetRoles(ctx context.Context, userID string) (RoleSet, error)
	AssignRoles(ctx context.Context, userID string, roles RoleSet) error
	ListByRole(ctx context.Context, role Role) ([]Profile, error)
	GetProfiles(ctx context.Context, ids []string) ([]Profile, error)
}
