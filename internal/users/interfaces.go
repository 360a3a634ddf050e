package users

import (
	"context"
)

// UserStore defines the interface for user storage operations.
// Lookups return ErrNotFound when nothing matches; writes return a
// *ConflictError when a unique column would be duplicated.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, req *UserInput, passwordHash string) (*User, error)
	UpdateUser(ctx context.Context, id int64, req *UserInput) (*User, error)
}

// UserService defines the interface for user service operations
type UserService interface {
	CreateUser(ctx context.Context, req *UserInput) (*User, error)
	EditUser(ctx context.Context, userID int64, req *UserInput) (*User, error)
	GetUserByEmail(ctx context.Context, rawEmail string) (*User, error)
}

// PasswordIssuer produces the stored hash of a new user's initial password
type PasswordIssuer interface {
	Issue() (string, error)
}
