package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/records-service/internal/core/domain"
)

// PgxUserRepository implements domain.UserRepository using pgx.
type PgxUserRepository struct {
	db DBTX
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db DBTX) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

const selectUser = `SELECT id, username, email, password_hash, created_at, updated_at FROM users`

// FindUserByID returns the user with the given identifier.
// Returns (nil, nil) when no user is found or the identifier is not a valid key.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return r.scanOne(ctx, selectUser+` WHERE id = $1`, key)
}

// FindUserByUsername returns the user matching the given username.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanOne(ctx, selectUser+` WHERE username = $1`, username)
}

// ExistsByUsernameOrEmail returns true when a user with the given
// username or email already exists.
func (r *PgxUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}

	return exists, nil
}

// InsertUser inserts a new user and returns the generated user ID.
func (r *PgxUserRepository) InsertUser(ctx context.Context, user *domain.User) (string, error) {
	query := `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := r.db.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("insert user %q: %w", user.Username, domain.ErrDuplicateUser)
		}
		return "", fmt.Errorf("insert user: %w", err)
	}

	return formatID(id), nil
}

func (r *PgxUserRepository) scanOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		id   int64
		user domain.User
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&id, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.ID = formatID(id)
	return &user, nil
}
