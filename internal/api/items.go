package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/taskflow/client-go/internal/models"
)

// ItemQuery narrows an item list request.
type ItemQuery struct {
	Keyword          string
	Status           models.ItemStatus
	GroupID          int64
	AssigneeID       int64
	IncludeCompleted bool
	IncludeDeleted   bool
	Page             int
	Size             int
}

func (q ItemQuery) encode() string {
	v := url.Values{}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.GroupID != 0 {
		v.Set("groupId", strconv.FormatInt(q.GroupID, 10))
	}
	if q.AssigneeID != 0 {
		v.Set("assigneeId", strconv.FormatInt(q.AssigneeID, 10))
	}
	if q.IncludeCompleted {
		v.Set("includeCompleted", "true")
	}
	if q.IncludeDeleted {
		v.Set("includeDeleted", "true")
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if enc := v.Encode(); enc != "" {
		return "?" + enc
	}
	return ""
}

// ItemCreate is the create-item request body.
type ItemCreate struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      models.ItemStatus `json:"status,omitempty"`
	Priority    models.Priority   `json:"priority,omitempty"`
	GroupID     int64             `json:"groupId,omitempty"`
	AssigneeID  int64             `json:"assigneeId,omitempty"`
	DueDate     string            `json:"dueDate,omitempty"`
	Properties  map[int64]any     `json:"properties,omitempty"`
}

// ListItems returns one page of a board's items.
func (c *Client) ListItems(ctx context.Context, boardID int64, q ItemQuery) (Response[models.Page[models.Item]], error) {
	path := fmt.Sprintf("/boards/%d/items%s", boardID, q.encode())
	return Call[models.Page[models.Item]](ctx, c, http.MethodGet, path, nil)
}

// GetItem returns a single item.
func (c *Client) GetItem(ctx context.Context, boardID, itemID int64) (Response[models.Item], error) {
	path := fmt.Sprintf("/boards/%d/items/%d", boardID, itemID)
	return Call[models.Item](ctx, c, http.MethodGet, path, nil)
}

// CreateItem creates an item and returns the server record.
func (c *Client) CreateItem(ctx context.Context, boardID int64, req ItemCreate) (Response[models.Item], error) {
	path := fmt.Sprintf("/boards/%d/items", boardID)
	return Call[models.Item](ctx, c, http.MethodPost, path, req)
}

// UpdateItem applies a partial update and returns the canonical record.
func (c *Client) UpdateItem(ctx context.Context, boardID, itemID int64, patch models.ItemPatch) (Response[models.Item], error) {
	path := fmt.Sprintf("/boards/%d/items/%d", boardID, itemID)
	return Call[models.Item](ctx, c, http.MethodPut, path, patch)
}

// DeleteItem soft-deletes an item. The server acknowledges without a body.
func (c *Client) DeleteItem(ctx context.Context, boardID, itemID int64) (Response[models.Item], error) {
	path := fmt.Sprintf("/boards/%d/items/%d", boardID, itemID)
	return Call[models.Item](ctx, c, http.MethodDelete, path, nil)
}

// CompleteItem marks an item completed and returns the canonical record.
func (c *Client) CompleteItem(ctx context.Context, boardID, itemID int64) (Response[models.Item], error) {
	path := fmt.Sprintf("/boards/%d/items/%d/complete", boardID, itemID)
	return Call[models.Item](ctx, c, http.MethodPut, path, nil)
}

// RestoreItem brings a completed or deleted item back and returns the
// canonical record.
func (c *Client) RestoreItem(ctx context.Context, boardID, itemID int64) (Response[models.Item], error) {
	path := fmt.Sprintf("/boards/%d/items/%d/restore", boardID, itemID)
	return Call[models.Item](ctx, c, http.MethodPut, path, nil)
}
