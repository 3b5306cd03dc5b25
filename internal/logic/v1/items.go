package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/records-service/internal/auth"
	"github.com/duynhne/records-service/internal/core/domain"
	"github.com/duynhne/records-service/middleware"
)

// ItemService implements the records business rules. Every operation is
// scoped to the authenticated principal.
type ItemService struct {
	items domain.ItemRepository
}

// NewItemService creates a new ItemService.
func NewItemService(items domain.ItemRepository) *ItemService {
	return &ItemService{items: items}
}

// Create stores a new item owned by the principal.
func (s *ItemService) Create(ctx context.Context, principal *auth.Principal, req domain.CreateItemRequest) (*domain.Item, error) {
	ctx, span := startItemSpan(ctx, "items.create", principal)
	defer span.End()

	item, err := s.items.Create(ctx, principal.UserID(), req.Title, req.Description)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create item: %w", err)
	}

	span.SetAttributes(attribute.String("item.id", item.ID))
	return item, nil
}

// Get returns one of the principal's items.
func (s *ItemService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Item, error) {
	ctx, span := startItemSpan(ctx, "items.get", principal)
	defer span.End()

	item, err := s.items.GetByID(ctx, id, principal.UserID())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("get item %s: %w", id, ErrItemNotFound)
	}
	return item, nil
}

// List returns all of the principal's items.
func (s *ItemService) List(ctx context.Context, principal *auth.Principal) ([]domain.Item, error) {
	ctx, span := startItemSpan(ctx, "items.list", principal)
	defer span.End()

	items, err := s.items.ListByOwner(ctx, principal.UserID())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list items: %w", err)
	}

	span.SetAttributes(attribute.Int("items.count", len(items)))
	return items, nil
}

// Update applies a partial update and returns the updated item.
func (s *ItemService) Update(ctx context.Context, principal *auth.Principal, id string, req domain.UpdateItemRequest) (*domain.Item, error) {
	ctx, span := startItemSpan(ctx, "items.update", principal)
	defer span.End()

	if req.Title == nil && req.Description == nil {
		return nil, fmt.Errorf("update item %s: %w", id, ErrEmptyUpdate)
	}

	updated, err := s.items.Update(ctx, id, principal.UserID(), domain.ItemUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	if !updated {
		return nil, fmt.Errorf("update item %s: %w", id, ErrItemNotFound)
	}

	return s.Get(ctx, principal, id)
}

// Delete removes one of the principal's items.
func (s *ItemService) Delete(ctx context.Context, principal *auth.Principal, id string) error {
	ctx, span := startItemSpan(ctx, "items.delete", principal)
	defer span.End()

	deleted, err := s.items.Delete(ctx, id, principal.UserID())
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("delete item %s: %w", id, ErrItemNotFound)
	}
	return nil
}

func startItemSpan(ctx context.Context, name string, principal *auth.Principal) (context.Context, trace.Span) {
	return middleware.StartSpan(ctx, name, trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", principal.UserID()),
	))
}
