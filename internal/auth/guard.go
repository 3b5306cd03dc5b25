package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/duynhne/records-service/internal/core/domain"
)

const (
	// AuthorizationHeader is the request header carrying the session token.
	AuthorizationHeader = "Authorization"

	// BearerPrefix is the case-sensitive scheme prefix, including its single space.
	BearerPrefix = "Bearer "

	// DefaultLookupTimeout bounds principal resolution when none is configured.
	DefaultLookupTimeout = 5 * time.Second
)

// HeaderSource is anything that can supply request headers and the request's
// cancellation signal. Transports (gin, net/http, ...) adapt their request type to it.
type HeaderSource interface {
	Header(name string) string
	Context() context.Context
}

// TokenValidator validates a raw session token.
type TokenValidator interface {
	Validate(token string) (*TokenClaims, error)
}

// UserFinder resolves a token subject into a user record.
// It returns (nil, nil) when the user does not exist.
type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
}

// DenyReason is the client-visible outcome of a rejected authentication.
type DenyReason int

const (
	// DenyUnauthorized covers every missing, invalid or unresolvable credential.
	DenyUnauthorized DenyReason = iota + 1
	// DenyInternal covers failures of the user lookup collaborator.
	DenyInternal
)

// Status returns the HTTP status code for the reason.
func (r DenyReason) Status() int {
	if r == DenyUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (r DenyReason) String() string {
	if r == DenyUnauthorized {
		return "unauthorized"
	}
	return "internal_error"
}

// DenyError is returned by Guard.Authenticate on rejection.
// Err keeps the internal cause for logs and metrics; it must not reach clients.
type DenyError struct {
	Reason DenyReason
	Err    error
}

func (e *DenyError) Error() string {
	return fmt.Sprintf("authentication denied (%s): %v", e.Reason, e.Err)
}

func (e *DenyError) Unwrap() error {
	return e.Err
}

// Principal is the authenticated identity bound to a single request.
type Principal struct {
	User domain.User
}

// UserID returns the principal's user identifier.
func (p *Principal) UserID() string {
	return p.User.ID
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithLookupTimeout bounds the user lookup. Non-positive values are ignored.
func WithLookupTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.lookupTimeout = d
		}
	}
}

// Guard authenticates incoming requests. It holds no per-request state and
// is safe for concurrent use.
type Guard struct {
	tokens        TokenValidator
	users         UserFinder
	lookupTimeout time.Duration
}

// NewGuard creates a Guard over the given token validator and user finder.
func NewGuard(tokens TokenValidator, users UserFinder, opts ...GuardOption) *Guard {
	g := &Guard{
		tokens:        tokens,
		users:         users,
		lookupTimeout: DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate extracts the bearer token from src, validates it and resolves
// its subject. Any failure is returned as a *DenyError.
func (g *Guard) Authenticate(src HeaderSource) (*Principal, error) {
	ctx := src.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, deny(DenyInternal, err)
	}

	token, err := BearerToken(src.Header(AuthorizationHeader))
	if err != nil {
		return nil, deny(DenyUnauthorized, err)
	}

	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, deny(DenyUnauthorized, err)
	}

	user, err := g.lookup(ctx, claims.Subject)
	if err != nil {
		return nil, deny(DenyInternal, err)
	}
	if user == nil {
		return nil, deny(DenyUnauthorized, fmt.Errorf("subject %q: %w", claims.Subject, ErrUserNotFound))
	}

	return &Principal{User: *user}, nil
}

type lookupResult struct {
	user *domain.User
	err  error
}

// lookup runs the user finder under a bounded context and stops waiting as
// soon as that context ends, even if the finder ignores it.
func (g *Guard) lookup(ctx context.Context, subject string) (*domain.User, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, g.lookupTimeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		user, err := g.users.FindUserByID(lookupCtx, subject)
		done <- lookupResult{user: user, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, res.err)
		}
		return res.user, nil
	case <-lookupCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrCollaboratorUnavailable, lookupCtx.Err())
	}
}

// BearerToken extracts the token from an Authorization header value.
// The scheme match is case-sensitive and surrounding whitespace is trimmed.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredentials
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", ErrInvalidScheme
	}
	token := strings.TrimSpace(header[len(BearerPrefix):])
	if token == "" {
		return "", ErrMissingCredentials
	}
	return token, nil
}

// CauseLabel maps a denial cause onto a low-cardinality label for metrics and logs.
func CauseLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingCredentials):
		return "missing_token"
	case errors.Is(err, ErrInvalidScheme):
		return "invalid_scheme"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrCollaboratorUnavailable):
		return "lookup_failed"
	default:
		return "unknown"
	}
}

func deny(reason DenyReason, err error) *DenyError {
	return &DenyError{Reason: reason, Err: err}
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// RequestSource adapts a *http.Request to HeaderSource.
type RequestSource struct {
	*http.Request
}

// Header returns the first value of the named request header.
func (r RequestSource) Header(name string) string {
	return r.Request.Header.Get(name)
}
