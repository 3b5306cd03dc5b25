package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/records-service/internal/auth"
	"github.com/duynhne/records-service/internal/logger"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// Authenticator is implemented by *auth.Guard.
type Authenticator interface {
	Authenticate(src auth.HeaderSource) (*auth.Principal, error)
}

// ginSource adapts *gin.Context to auth.HeaderSource.
type ginSource struct {
	c *gin.Context
}

func (s ginSource) Header(name string) string {
	return s.c.GetHeader(name)
}

func (s ginSource) Context() context.Context {
	return s.c.Request.Context()
}

// RequireAuth rejects requests without a valid bearer token and binds the
// resolved principal to the request context otherwise.
//
// Clients only ever see 401 "Unauthorized" or 500 "Internal server error";
// the underlying cause is logged and counted.
func RequireAuth(guard Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)

		principal, err := guard.Authenticate(ginSource{c: c})
		RecordAuthDecision(err)

		if err != nil {
			status := http.StatusInternalServerError
			var denyErr *auth.DenyError
			if errors.As(err, &denyErr) {
				status = denyErr.Reason.Status()
			}

			span.SetAttributes(
				attribute.Bool("auth.authenticated", false),
				attribute.String("auth.reason", auth.CauseLabel(err)),
			)

			event := logger.FromContext(ctx).Warn()
			if status >= http.StatusInternalServerError {
				event = logger.FromContext(ctx).Error()
			}
			event.Err(err).Str("reason", auth.CauseLabel(err)).Msg("Authentication denied")

			if status == http.StatusUnauthorized {
				c.AbortWithStatusJSON(status, gin.H{"error": "Unauthorized"})
			} else {
				c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
			}
			return
		}

		span.SetAttributes(
			attribute.Bool("auth.authenticated", true),
			attribute.String("user.id", principal.UserID()),
		)

		c.Set(UserIDKey, principal.UserID())
		c.Request = c.Request.WithContext(auth.WithPrincipal(ctx, principal))
		c.Next()
	}
}

// CurrentPrincipal returns the principal bound by RequireAuth.
func CurrentPrincipal(c *gin.Context) (*auth.Principal, bool) {
	return auth.PrincipalFromContext(c.Request.Context())
}
