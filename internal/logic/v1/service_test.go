package v1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/records-service/internal/auth"
	"github.com/duynhne/records-service/internal/core/domain"
)

var errDB = errors.New("db down")

type stubUsers struct {
	byUsername map[string]*domain.User
	exists     bool
	findErr    error
	existsErr  error
	insertErr  error
	inserted   []domain.User
}

func (s *stubUsers) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range s.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.byUsername[username], nil
}

func (s *stubUsers) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return s.exists, s.existsErr
}

func (s *stubUsers) InsertUser(ctx context.Context, user *domain.User) (string, error) {
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserted = append(s.inserted, *user)
	return "42", nil
}

// countingHasher records how often each method runs.
type countingHasher struct {
	auth.PasswordHasher
	hashes   int
	verifies int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.hashes++
	return h.PasswordHasher.Hash(password)
}

func (h *countingHasher) Verify(password, hash string) (bool, error) {
	h.verifies++
	return h.PasswordHasher.Verify(password, hash)
}

type failingIssuer struct{}

func (failingIssuer) IssueWithClaims(string) (string, *auth.TokenClaims, error) {
	return "", nil, auth.ErrSigning
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: []byte("0123456789abcdef0123456789abcdef")})
	require.NoError(t, err)
	return tokens
}

func newAuthFixture(t *testing.T, users *stubUsers) (*AuthService, *countingHasher, *auth.TokenService) {
	t.Helper()
	hasher := &countingHasher{PasswordHasher: auth.NewBcryptHasher(4)}
	tokens := newTokens(t)
	return NewAuthService(users, hasher, tokens), hasher, tokens
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := auth.NewBcryptHasher(4).Hash(password)
	require.NoError(t, err)
	return &domain.User{ID: "7", Username: "alice", Email: "alice@example.com", PasswordHash: hash}
}

func TestAuthService_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		users := &stubUsers{byUsername: map[string]*domain.User{"alice": storedUser(t, "s3cret-pass")}}
		svc, _, tokens := newAuthFixture(t, users)

		resp, err := svc.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "s3cret-pass"})

		require.NoError(t, err)
		assert.Equal(t, "7", resp.User.ID)
		assert.Empty(t, resp.User.PasswordHash)
		assert.WithinDuration(t, time.Now().Add(auth.DefaultTokenTTL), resp.ExpiresAt, 2*time.Second)

		claims, err := tokens.Validate(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "7", claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := &stubUsers{byUsername: map[string]*domain.User{"alice": storedUser(t, "s3cret-pass")}}
		svc, _, _ := newAuthFixture(t, users)

		_, err := svc.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "nope"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user still verifies once", func(t *testing.T) {
		svc, hasher, _ := newAuthFixture(t, &stubUsers{})

		_, err := svc.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "whatever"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 1, hasher.verifies)
	})

	t.Run("malformed stored hash", func(t *testing.T) {
		user := storedUser(t, "s3cret-pass")
		user.PasswordHash = "not-a-bcrypt-hash"
		svc, _, _ := newAuthFixture(t, &stubUsers{byUsername: map[string]*domain.User{"alice": user}})

		_, err := svc.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "s3cret-pass"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.ErrorIs(t, err, auth.ErrHashing)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t, &stubUsers{findErr: errDB})

		_, err := svc.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "x"})

		assert.ErrorIs(t, err, errDB)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("signing failure", func(t *testing.T) {
		users := &stubUsers{byUsername: map[string]*domain.User{"alice": storedUser(t, "s3cret-pass")}}
		svc := NewAuthService(users, auth.NewBcryptHasher(4), failingIssuer{})

		_, err := svc.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "s3cret-pass"})

		assert.ErrorIs(t, err, auth.ErrSigning)
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		users := &stubUsers{}
		svc, hasher, _ := newAuthFixture(t, users)

		resp, err := svc.Register(context.Background(), domain.RegisterRequest{
			Username: "bob", Email: "bob@example.com", Password: "hunter22",
		})

		require.NoError(t, err)
		assert.Equal(t, "42", resp.User.ID)
		assert.NotEmpty(t, resp.Token)
		assert.Empty(t, resp.User.PasswordHash)
		assert.Equal(t, 1, hasher.hashes)

		require.Len(t, users.inserted, 1)
		assert.NotEqual(t, "hunter22", users.inserted[0].PasswordHash)
		ok, err := hasher.Verify("hunter22", users.inserted[0].PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("duplicate", func(t *testing.T) {
		users := &stubUsers{exists: true}
		svc, hasher, _ := newAuthFixture(t, users)

		_, err := svc.Register(context.Background(), domain.RegisterRequest{Username: "bob", Email: "b@x.io", Password: "hunter22"})

		assert.ErrorIs(t, err, ErrUserExists)
		assert.Zero(t, hasher.hashes)
		assert.Empty(t, users.inserted)
	})

	t.Run("exists check fails", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t, &stubUsers{existsErr: errDB})

		_, err := svc.Register(context.Background(), domain.RegisterRequest{Username: "bob", Email: "b@x.io", Password: "hunter22"})

		assert.ErrorIs(t, err, errDB)
	})

	t.Run("insert races with another registration", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t, &stubUsers{insertErr: domain.ErrDuplicateUser})

		_, err := svc.Register(context.Background(), domain.RegisterRequest{Username: "bob", Email: "b@x.io", Password: "hunter22"})

		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("insert fails", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t, &stubUsers{insertErr: errDB})

		_, err := svc.Register(context.Background(), domain.RegisterRequest{Username: "bob", Email: "b@x.io", Password: "hunter22"})

		assert.ErrorIs(t, err, errDB)
	})
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newAuthFixture(t, &stubUsers{})
	principal := &auth.Principal{User: domain.User{ID: "7", Username: "alice", PasswordHash: "$2a$04$secret"}}

	user := svc.Me(principal)

	assert.Equal(t, "7", user.ID)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, "$2a$04$secret", principal.User.PasswordHash)
}
