// Package v1 provides the login, registration and records business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent common failures.
// These errors are wrapped with context using fmt.Errorf("%w") when returned
// from business logic methods.
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
//	case errors.Is(err, logicv1.ErrItemNotFound):
//	    c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for business operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the username is unknown or the password is wrong.
	// The two cases are deliberately indistinguishable to clients.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists indicates the username or email already exists in the system.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrItemNotFound indicates the item does not exist or belongs to another user.
	// HTTP Status: 404 Not Found
	ErrItemNotFound = errors.New("item not found")

	// ErrEmptyUpdate indicates an update request that changes nothing.
	// HTTP Status: 400 Bad Request
	ErrEmptyUpdate = errors.New("nothing to update")
)
