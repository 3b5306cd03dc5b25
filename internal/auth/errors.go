package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication core.
// They are wrapped with context using fmt.Errorf("%w") and must never be
// reported to clients verbatim; the guard collapses them into DenyReason.
var (
	// ErrHashing indicates a malformed stored hash or an internal hashing failure.
	ErrHashing = errors.New("password hashing failed")

	// ErrSigning indicates a token could not be signed.
	// HTTP Status: 500 Internal Server Error
	ErrSigning = errors.New("token signing failed")

	// ErrTokenInvalid is the parent of every token validation failure.
	// HTTP Status: 401 Unauthorized
	ErrTokenInvalid = errors.New("invalid token")

	// ErrMalformedToken indicates the token is not structurally valid.
	ErrMalformedToken = fmt.Errorf("%w: malformed", ErrTokenInvalid)

	// ErrBadSignature indicates the signature does not verify against the current secret.
	ErrBadSignature = fmt.Errorf("%w: bad signature", ErrTokenInvalid)

	// ErrTokenExpired indicates a correctly signed token past its expiry.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrTokenInvalid)

	// ErrMissingCredentials indicates the request carried no bearer token.
	// HTTP Status: 401 Unauthorized
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidScheme indicates an Authorization header without the "Bearer " scheme.
	// HTTP Status: 401 Unauthorized
	ErrInvalidScheme = errors.New("invalid authorization scheme")

	// ErrUserNotFound indicates a valid token names a user that no longer exists.
	// HTTP Status: 401 Unauthorized
	ErrUserNotFound = errors.New("user not found")

	// ErrCollaboratorUnavailable indicates the user lookup failed or timed out.
	// HTTP Status: 500 Internal Server Error
	ErrCollaboratorUnavailable = errors.New("user lookup unavailable")
)
