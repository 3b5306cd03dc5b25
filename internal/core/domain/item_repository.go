package domain

import (
	"context"
	"time"
)

// Item is a record owned by a single user.
type Item struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemUpdate carries a partial update; nil fields are left unchanged.
type ItemUpdate struct {
	Title       *string
	Description *string
}

// ItemRepository defines the data-access contract for item operations.
// Every mutating call is scoped to the owner so one user can never touch
// another user's records.
type ItemRepository interface {
	// Create inserts a new item and returns it with generated fields populated.
	Create(ctx context.Context, ownerID, title, description string) (*Item, error)

	// GetByID returns the item if it exists and belongs to ownerID.
	// Returns (nil, nil) otherwise.
	GetByID(ctx context.Context, id, ownerID string) (*Item, error)

	// ListByOwner returns all items belonging to ownerID, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Item, error)

	// Update applies a partial update. Returns false when nothing matched.
	Update(ctx context.Context, id, ownerID string, upd ItemUpdate) (bool, error)

	// Delete removes the item. Returns false when nothing matched.
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}
