package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of every issued session token.
const DefaultTokenTTL = 24 * time.Hour

// signingMethod is the only algorithm the service signs with or accepts.
var signingMethod = jwt.SigningMethodHS256

// TokenClaims is the identity carried inside a session token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// TokenConfig configures a TokenService.
type TokenConfig struct {
	// Secret is the HMAC key shared by signing and verification.
	Secret []byte
	// TTL defaults to DefaultTokenTTL when zero.
	TTL time.Duration
	// Leeway is the tolerated clock skew when checking expiry. Zero by default.
	Leeway time.Duration
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the wall clock used for issuance and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService issues and validates HS256-signed session tokens.
// It is safe for concurrent use; its state is immutable after construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService creates a TokenService. An empty secret is rejected.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: signing secret is required", ErrSigning)
	}
	if cfg.Leeway < 0 {
		return nil, fmt.Errorf("token leeway must not be negative, got %s", cfg.Leeway)
	}

	s := &TokenService{
		secret: append([]byte(nil), cfg.Secret...),
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(s.now),
	)
	return s, nil
}

// TTL returns the lifetime applied to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token for subject.
func (s *TokenService) Issue(subject string) (string, error) {
	token, _, err := s.IssueWithClaims(subject)
	return token, err
}

// IssueWithClaims signs a new token for subject and returns the embedded claims.
func (s *TokenService) IssueWithClaims(subject string) (string, *TokenClaims, error) {
	if subject == "" {
		return "", nil, fmt.Errorf("%w: empty subject", ErrSigning)
	}

	now := s.now()
	registered := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(signingMethod, registered).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrSigning, err)
	}

	return signed, toTokenClaims(&registered), nil
}

// Validate parses token, verifies its signature and then its expiry.
// Errors wrap ErrMalformedToken, ErrBadSignature or ErrTokenExpired.
func (s *TokenService) Validate(token string) (*TokenClaims, error) {
	registered := &jwt.RegisteredClaims{}

	_, err := s.parser.ParseWithClaims(token, registered, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != signingMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	if registered.Subject == "" || registered.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing subject or issued-at", ErrMalformedToken)
	}

	return toTokenClaims(registered), nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
}

func toTokenClaims(c *jwt.RegisteredClaims) *TokenClaims {
	claims := &TokenClaims{Subject: c.Subject, ID: c.ID}
	if c.IssuedAt != nil {
		claims.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		claims.ExpiresAt = c.ExpiresAt.Time
	}
	return claims
}
