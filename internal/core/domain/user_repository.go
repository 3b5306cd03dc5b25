package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateUser is returned by InsertUser when the username or email is taken.
var ErrDuplicateUser = errors.New("duplicate user")

// User is the identity record persisted by the data layer.
// PasswordHash is never serialized to clients.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The auth and logic layers depend on this interface only, never on SQL or pgx directly.
type UserRepository interface {
	// FindUserByID returns the user with the given identifier.
	// Returns (nil, nil) when no user is found.
	FindUserByID(ctx context.Context, id string) (*User, error)

	// FindUserByUsername returns the user matching the given username.
	// Returns (nil, nil) when no user is found.
	FindUserByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsernameOrEmail returns true when a user with the given
	// username or email already exists.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// InsertUser persists a new user and returns the generated identifier.
	// A uniqueness conflict is reported as ErrDuplicateUser.
	InsertUser(ctx context.Context, user *User) (string, error)
}
