package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/records-service/internal/auth"
	"github.com/duynhne/records-service/internal/core/domain"
	"github.com/duynhne/records-service/internal/logger"
	logicv1 "github.com/duynhne/records-service/internal/logic/v1"
	"github.com/duynhne/records-service/middleware"
)

// Handler groups HTTP handlers for the records API v1.
// Dependencies are injected via the constructor.
type Handler struct {
	auth  *logicv1.AuthService
	items *logicv1.ItemService
}

// NewHandler creates a new Handler with the given services.
func NewHandler(auth *logicv1.AuthService, items *logicv1.ItemService) *Handler {
	return &Handler{auth: auth, items: items}
}

// RegisterRoutes registers all API v1 routes on the given router group.
// requireAuth guards every route that needs an authenticated principal.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/register", h.Register)

	protected := rg.Group("", requireAuth)
	protected.GET("/auth/me", h.GetMe)
	protected.GET("/items", h.ListItems)
	protected.POST("/items", h.CreateItem)
	protected.GET("/items/:id", h.GetItem)
	protected.PATCH("/items/:id", h.UpdateItem)
	protected.DELETE("/items/:id", h.DeleteItem)
}

func startRequestSpan(c *gin.Context) trace.Span {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
	c.Request = c.Request.WithContext(ctx)
	return span
}

// Login handles HTTP request for user login.
func (h *Handler) Login(c *gin.Context) {
	span := startRequestSpan(c)
	defer span.End()
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, logicv1.ErrInvalidCredentials) {
			log.Warn().Err(err).Msg("Login failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		log.Error().Err(err).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	log.Info().Str("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Register handles HTTP request for user registration.
func (h *Handler) Register(c *gin.Context) {
	span := startRequestSpan(c)
	defer span.End()
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)

		switch {
		case errors.Is(err, logicv1.ErrUserExists):
			log.Warn().Err(err).Str("username", req.Username).Msg("Registration failed")
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("Registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Str("user_id", response.User.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, response)
}

// GetMe returns the authenticated user.
// GET /api/v1/auth/me
// Authorization: Bearer <token>
func (h *Handler) GetMe(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.auth.Me(principal))
}

// ListItems returns the caller's items.
func (h *Handler) ListItems(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	span := startRequestSpan(c)
	defer span.End()

	items, err := h.items.List(c.Request.Context(), principal)
	if err != nil {
		h.itemError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateItem stores a new item for the caller.
func (h *Handler) CreateItem(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	span := startRequestSpan(c)
	defer span.End()

	var req domain.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.items.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.itemError(c, span, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItem returns one of the caller's items.
func (h *Handler) GetItem(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	span := startRequestSpan(c)
	defer span.End()

	item, err := h.items.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.itemError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem partially updates one of the caller's items.
func (h *Handler) UpdateItem(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	span := startRequestSpan(c)
	defer span.End()

	var req domain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.items.Update(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		h.itemError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes one of the caller's items.
func (h *Handler) DeleteItem(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	span := startRequestSpan(c)
	defer span.End()

	if err := h.items.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		h.itemError(c, span, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// principal fetches the principal bound by middleware.RequireAuth.
// A missing principal means the route was registered without the guard.
func (h *Handler) principal(c *gin.Context) (*auth.Principal, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		logger.FromContext(c.Request.Context()).Error().Str("path", c.FullPath()).Msg("Protected route reached without principal")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return principal, true
}

func (h *Handler) itemError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	log := logger.FromContext(c.Request.Context())

	switch {
	case errors.Is(err, logicv1.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, logicv1.ErrEmptyUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
	default:
		log.Error().Err(err).Msg("Item operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
