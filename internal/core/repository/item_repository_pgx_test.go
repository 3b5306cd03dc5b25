package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/records-service/internal/core/domain"
)

var itemColumns = []string{"id", "user_id", "title", "description", "created_at", "updated_at"}

func TestPgxItemRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO items \(user_id, title, description\)`).
		WithArgs(int64(5), "groceries", "milk").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	repo := NewItemRepository(mock)
	item, err := repo.Create(context.Background(), "5", "groceries", "milk")

	require.NoError(t, err)
	assert.Equal(t, &domain.Item{
		ID: "11", OwnerID: "5", Title: "groceries", Description: "milk", CreatedAt: now, UpdatedAt: now,
	}, item)
}

func TestPgxItemRepository_Create_InvalidOwner(t *testing.T) {
	mock := newMockPool(t)

	repo := NewItemRepository(mock)
	_, err := repo.Create(context.Background(), "abc", "t", "d")

	assert.Error(t, err)
}

func TestPgxItemRepository_GetByID(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM items\s+WHERE id = \$1 AND user_id = \$2`).
			WithArgs(int64(11), int64(5)).
			WillReturnRows(pgxmock.NewRows(itemColumns).AddRow(int64(11), int64(5), "t", "d", now, now))

		item, err := NewItemRepository(mock).GetByID(context.Background(), "11", "5")

		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "11", item.ID)
		assert.Equal(t, "5", item.OwnerID)
	})

	t.Run("owned by someone else", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM items`).
			WithArgs(int64(11), int64(6)).
			WillReturnError(pgx.ErrNoRows)

		item, err := NewItemRepository(mock).GetByID(context.Background(), "11", "6")

		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("invalid id", func(t *testing.T) {
		mock := newMockPool(t)

		item, err := NewItemRepository(mock).GetByID(context.Background(), "zz", "5")

		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func TestPgxItemRepository_ListByOwner(t *testing.T) {
	now := time.Now().UTC()

	t.Run("returns rows in order", func(t *testing.T) {
		mock := newMockPool(t)
		rows := pgxmock.NewRows(itemColumns).
			AddRow(int64(2), int64(5), "second", "", now, now).
			AddRow(int64(1), int64(5), "first", "", now, now)
		mock.ExpectQuery(`FROM items\s+WHERE user_id = \$1\s+ORDER BY`).
			WithArgs(int64(5)).
			WillReturnRows(rows)

		items, err := NewItemRepository(mock).ListByOwner(context.Background(), "5")

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "second", items[0].Title)
		assert.Equal(t, "first", items[1].Title)
	})

	t.Run("empty", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM items`).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows(itemColumns))

		items, err := NewItemRepository(mock).ListByOwner(context.Background(), "5")

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NotNil(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM items`).
			WithArgs(int64(5)).
			WillReturnError(errors.New("timeout"))

		_, err := NewItemRepository(mock).ListByOwner(context.Background(), "5")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "list items")
	})
}

func TestPgxItemRepository_Update(t *testing.T) {
	title := "renamed"

	t.Run("updated", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE items`).
			WithArgs(int64(11), int64(5), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		ok, err := NewItemRepository(mock).Update(context.Background(), "11", "5", domain.ItemUpdate{Title: &title})

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no match", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`UPDATE items`).
			WithArgs(int64(11), int64(5), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		ok, err := NewItemRepository(mock).Update(context.Background(), "11", "5", domain.ItemUpdate{Title: &title})

		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPgxItemRepository_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM items WHERE id = \$1 AND user_id = \$2`).
			WithArgs(int64(11), int64(5)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		ok, err := NewItemRepository(mock).Delete(context.Background(), "11", "5")

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("exec error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM items`).
			WithArgs(int64(11), int64(5)).
			WillReturnError(errors.New("boom"))

		_, err := NewItemRepository(mock).Delete(context.Background(), "11", "5")

		assert.Error(t, err)
	})
}
