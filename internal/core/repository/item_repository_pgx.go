package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/duynhne/records-service/internal/core/domain"
)

// PgxItemRepository implements domain.ItemRepository using pgx.
type PgxItemRepository struct {
	db DBTX
}

// NewItemRepository creates a new PgxItemRepository.
func NewItemRepository(db DBTX) *PgxItemRepository {
	return &PgxItemRepository{db: db}
}

// Create inserts a new item and returns it with generated fields populated.
func (r *PgxItemRepository) Create(ctx context.Context, ownerID, title, description string) (*domain.Item, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return nil, fmt.Errorf("insert item: invalid owner id %q", ownerID)
	}

	query := `
		INSERT INTO items (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	var id int64
	item := domain.Item{OwnerID: ownerID, Title: title, Description: description}
	if err := r.db.QueryRow(ctx, query, owner, title, description).Scan(&id, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	item.ID = formatID(id)
	return &item, nil
}

// GetByID returns the item if it exists and belongs to ownerID.
// Returns (nil, nil) otherwise.
func (r *PgxItemRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Item, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	owner, ok := parseID(ownerID)
	if !ok {
		return nil, nil
	}

	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM items
		WHERE id = $1 AND user_id = $2
	`

	item, err := scanItem(r.db.QueryRow(ctx, query, key, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// ListByOwner returns all items belonging to ownerID, newest first.
func (r *PgxItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return []domain.Item{}, nil
	}

	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}

// Update applies a partial update. Returns false when nothing matched.
func (r *PgxItemRepository) Update(ctx context.Context, id, ownerID string, upd domain.ItemUpdate) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	owner, ok := parseID(ownerID)
	if !ok {
		return false, nil
	}

	query := `
		UPDATE items
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.db.Exec(ctx, query, key, owner, upd.Title, upd.Description)
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the item. Returns false when nothing matched.
func (r *PgxItemRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	key, ok := parseID(id)
	if !ok {
		return false, nil
	}
	owner, ok := parseID(ownerID)
	if !ok {
		return false, nil
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1 AND user_id = $2`, key, owner)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		id, owner int64
		item      domain.Item
	)
	if err := row.Scan(&id, &owner, &item.Title, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.ID = formatID(id)
	item.OwnerID = formatID(owner)
	return &item, nil
}
