// Package services binds the REST boundary to the entity caches with the
// optimistic mutation protocol.
package services

import (
	"context"
	"time"

	"github.com/taskflow/client-go/internal/api"
	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
	"github.com/taskflow/client-go/internal/mutate"
	"github.com/taskflow/client-go/internal/store"
)

// ItemService performs item operations for one board-scoped session. Every
// state-changing call goes through the optimistic coordinator: the cache is
// patched before the server answers and reconciled after.
type ItemService struct {
	api   *api.Client
	cache *store.ItemCache
}

// NewItemService creates the service over a shared cache.
func NewItemService(client *api.Client, cache *store.ItemCache) *ItemService {
	return &ItemService{api: client, cache: cache}
}

// FetchItems loads a board's items into the cache, replacing its content.
func (s *ItemService) FetchItems(ctx context.Context, boardID int64, q api.ItemQuery) error {
	resp, err := s.api.ListItems(ctx, boardID, q)
	if err != nil {
		return errors.Wrap(errors.ErrTransport, "failed to load items", err)
	}
	if !resp.Success || resp.Data == nil {
		return rejected(resp.Message, "failed to load items")
	}
	s.cache.SetBoardID(boardID)
	s.cache.ReplaceAll(resp.Data.Content)
	logging.Debug("items loaded", map[string]any{"board": boardID, "count": len(resp.Data.Content)})
	return nil
}

// CreateItem creates an item on the server and prepends the returned record.
// Creation is not optimistic: there is no local key until the server assigns
// one.
func (s *ItemService) CreateItem(ctx context.Context, boardID int64, req api.ItemCreate) (*models.Item, error) {
	resp, err := s.api.CreateItem(ctx, boardID, req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrTransport, "failed to create item", err)
	}
	if !resp.Success || resp.Data == nil {
		return nil, rejected(resp.Message, "failed to create item")
	}
	s.cache.InsertOne(*resp.Data)
	return resp.Data, nil
}

// UpdateItem applies a partial edit optimistically and reconciles with the
// canonical server record.
func (s *ItemService) UpdateItem(ctx context.Context, boardID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	return mutate.Apply(ctx, s.cache, itemID, patch, func(ctx context.Context) (mutate.Outcome[models.Item], error) {
		return s.outcome(s.api.UpdateItem(ctx, boardID, itemID, patch))
	})
}

// DeleteItem soft-deletes: the item is optimistically marked DELETED with a
// local timestamp, and the state is kept when the server acknowledges.
func (s *ItemService) DeleteItem(ctx context.Context, boardID, itemID int64) error {
	now := time.Now()
	status := models.StatusDeleted
	patch := models.ItemPatch{Status: &status, DeletedAt: &now}
	return mutate.ApplyAcked(ctx, s.cache, itemID, patch, func(ctx context.Context) (mutate.Outcome[models.Item], error) {
		return s.outcome(s.api.DeleteItem(ctx, boardID, itemID))
	})
}

// CompleteItem marks the item completed with a synthetic local timestamp
// until the server's record replaces it.
func (s *ItemService) CompleteItem(ctx context.Context, boardID, itemID int64) (*models.Item, error) {
	now := time.Now()
	status := models.StatusCompleted
	patch := models.ItemPatch{Status: &status, CompletedAt: &now}
	return mutate.Apply(ctx, s.cache, itemID, patch, func(ctx context.Context) (mutate.Outcome[models.Item], error) {
		return s.outcome(s.api.CompleteItem(ctx, boardID, itemID))
	})
}

// RestoreItem brings a completed or deleted item back to NOT_STARTED.
func (s *ItemService) RestoreItem(ctx context.Context, boardID, itemID int64) (*models.Item, error) {
	status := models.StatusNotStarted
	patch := models.ItemPatch{Status: &status, ClearCompletedAt: true, ClearDeletedAt: true}
	return mutate.Apply(ctx, s.cache, itemID, patch, func(ctx context.Context) (mutate.Outcome[models.Item], error) {
		return s.outcome(s.api.RestoreItem(ctx, boardID, itemID))
	})
}

// UpdateItemProperty sets one dynamic property value.
func (s *ItemService) UpdateItemProperty(ctx context.Context, boardID, itemID, propertyID int64, value any) (*models.Item, error) {
	patch := models.ItemPatch{Properties: map[int64]any{propertyID: value}}
	return mutate.Apply(ctx, s.cache, itemID, patch, func(ctx context.Context) (mutate.Outcome[models.Item], error) {
		return s.outcome(s.api.UpdateItem(ctx, boardID, itemID, patch))
	})
}

// ReorderItem moves an item to a new sort position, optionally across
// groups.
func (s *ItemService) ReorderItem(ctx context.Context, boardID, itemID int64, sortOrder int, groupID *int64) (*models.Item, error) {
	patch := models.ItemPatch{SortOrder: &sortOrder, GroupID: groupID}
	return mutate.Apply(ctx, s.cache, itemID, patch, func(ctx context.Context) (mutate.Outcome[models.Item], error) {
		return s.outcome(s.api.UpdateItem(ctx, boardID, itemID, patch))
	})
}

func (s *ItemService) outcome(resp api.Response[models.Item], err error) (mutate.Outcome[models.Item], error) {
	if err != nil {
		return mutate.Outcome[models.Item]{}, err
	}
	return mutate.Outcome[models.Item]{OK: resp.Success, Payload: resp.Data, Message: resp.Message}, nil
}

func rejected(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return errors.New(errors.ErrAPIRejected, message)
}
