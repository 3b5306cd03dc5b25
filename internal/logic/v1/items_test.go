package v1

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/records-service/internal/auth"
	"github.com/duynhne/records-service/internal/core/domain"
)

type stubItems struct {
	item      *domain.Item
	list      []domain.Item
	matched   bool
	err       error
	lastUpd   domain.ItemUpdate
	lastOwner string
}

func (s *stubItems) Create(ctx context.Context, ownerID, title, description string) (*domain.Item, error) {
	s.lastOwner = ownerID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Item{ID: "1", OwnerID: ownerID, Title: title, Description: description}, nil
}

func (s *stubItems) GetByID(ctx context.Context, id, ownerID string) (*domain.Item, error) {
	s.lastOwner = ownerID
	return s.item, s.err
}

func (s *stubItems) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	s.lastOwner = ownerID
	return s.list, s.err
}

func (s *stubItems) Update(ctx context.Context, id, ownerID string, upd domain.ItemUpdate) (bool, error) {
	s.lastOwner = ownerID
	s.lastUpd = upd
	return s.matched, s.err
}

func (s *stubItems) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	s.lastOwner = ownerID
	return s.matched, s.err
}

var alice = &auth.Principal{User: domain.User{ID: "7", Username: "alice"}}

func TestItemService_Create(t *testing.T) {
	repo := &stubItems{}
	svc := NewItemService(repo)

	item, err := svc.Create(context.Background(), alice, domain.CreateItemRequest{Title: "t", Description: "d"})

	require.NoError(t, err)
	assert.Equal(t, "7", item.OwnerID)
	assert.Equal(t, "7", repo.lastOwner)

	repo.err = errDB
	_, err = svc.Create(context.Background(), alice, domain.CreateItemRequest{Title: "t"})
	assert.ErrorIs(t, err, errDB)
}

func TestItemService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := NewItemService(&stubItems{item: &domain.Item{ID: "1", OwnerID: "7"}})

		item, err := svc.Get(context.Background(), alice, "1")

		require.NoError(t, err)
		assert.Equal(t, "1", item.ID)
	})

	t.Run("missing or foreign", func(t *testing.T) {
		svc := NewItemService(&stubItems{})

		_, err := svc.Get(context.Background(), alice, "1")

		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("repository error", func(t *testing.T) {
		svc := NewItemService(&stubItems{err: errDB})

		_, err := svc.Get(context.Background(), alice, "1")

		assert.ErrorIs(t, err, errDB)
	})
}

func TestItemService_List(t *testing.T) {
	repo := &stubItems{list: []domain.Item{{ID: "2"}, {ID: "1"}}}
	svc := NewItemService(repo)

	items, err := svc.List(context.Background(), alice)

	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "7", repo.lastOwner)
}

func TestItemService_Update(t *testing.T) {
	title := "new"

	t.Run("empty update", func(t *testing.T) {
		svc := NewItemService(&stubItems{})

		_, err := svc.Update(context.Background(), alice, "1", domain.UpdateItemRequest{})

		assert.ErrorIs(t, err, ErrEmptyUpdate)
	})

	t.Run("not matched", func(t *testing.T) {
		svc := NewItemService(&stubItems{matched: false})

		_, err := svc.Update(context.Background(), alice, "1", domain.UpdateItemRequest{Title: &title})

		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("updated", func(t *testing.T) {
		repo := &stubItems{matched: true, item: &domain.Item{ID: "1", OwnerID: "7", Title: title}}
		svc := NewItemService(repo)

		item, err := svc.Update(context.Background(), alice, "1", domain.UpdateItemRequest{Title: &title})

		require.NoError(t, err)
		assert.Equal(t, "new", item.Title)
		require.NotNil(t, repo.lastUpd.Title)
		assert.Equal(t, "new", *repo.lastUpd.Title)
		assert.Nil(t, repo.lastUpd.Description)
	})
}

func TestItemService_Delete(t *testing.T) {
	svc := NewItemService(&stubItems{matched: true})
	require.NoError(t, svc.Delete(context.Background(), alice, "1"))

	svc = NewItemService(&stubItems{matched: false})
	assert.ErrorIs(t, svc.Delete(context.Background(), alice, "1"), ErrItemNotFound)

	svc = NewItemService(&stubItems{err: errDB})
	assert.ErrorIs(t, svc.Delete(context.Background(), alice, "1"), errDB)
}
