package v1

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/records-service/internal/auth"
	"github.com/duynhne/records-service/internal/core/domain"
	"github.com/duynhne/records-service/internal/logger"
	"github.com/duynhne/records-service/middleware"
)

// TokenIssuer issues session tokens for an authenticated subject.
type TokenIssuer interface {
	IssueWithClaims(subject string) (string, *auth.TokenClaims, error)
}

// AuthService implements the login and registration flows.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users  domain.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Login verifies the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	user, err := s.users.FindUserByUsername(ctx, req.Username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Username, err)
	}
	if user == nil {
		// Unknown users still pay one bcrypt comparison.
		_, _ = s.hasher.Verify(req.Password, s.placeholderHash())
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrInvalidCredentials)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error().Err(err).Str("user_id", user.ID).Msg("Stored password hash is unusable")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, errors.Join(ErrInvalidCredentials, err))
	}
	if !ok {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Username, ErrInvalidCredentials)
	}

	response, err := s.issue(*user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return response, nil
}

// Register creates a new user and issues a session token.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Username),
	))
	defer span.End()

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return nil, fmt.Errorf("register user %q: %w", req.Username, ErrUserExists)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	user.ID, err = s.users.InsertUser(ctx, &user)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, fmt.Errorf("register user %q: %w", req.Username, ErrUserExists)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	response, err := s.issue(user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return response, nil
}

// Me returns the public view of the authenticated principal.
func (s *AuthService) Me(principal *auth.Principal) domain.User {
	user := principal.User
	user.PasswordHash = ""
	return user
}

func (s *AuthService) issue(user domain.User) (*domain.AuthResponse, error) {
	token, claims, err := s.tokens.IssueWithClaims(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token for user %s: %w", user.ID, err)
	}

	user.PasswordHash = ""
	return &domain.AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User:      user,
	}, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password-for-timing")
	})
	return s.dummyHash
}
