package identity

import "context"

// UserRepository defines persistence for users
type UserRepository interface {
	// Create inserts a user; a duplicate zid returns shared.ErrAlreadyExists
	Create(ctx context.Context, user *User) error
	// FindByZid returns shared.ErrNotFound when absent
	FindByZid(ctx context.Context, zid string) (*User, error)
	FindByRole(ctx context.Context, roleID int64) ([]*User, error)
	FindByZids(ctx context.Context, zids []string) ([]*User, error)
}

// RoleRepository defines read access to roles
type RoleRepository interface {
	FindAll(ctx context.Context) ([]Role, error)
}
