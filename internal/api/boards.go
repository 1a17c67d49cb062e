package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskflow/client-go/internal/models"
)

// ListBoards returns every board visible to the account.
func (c *Client) ListBoards(ctx context.Context) (Response[[]models.Board], error) {
	return Call[[]models.Board](ctx, c, http.MethodGet, "/boards", nil)
}

// GetBoard returns a single board.
func (c *Client) GetBoard(ctx context.Context, boardID int64) (Response[models.Board], error) {
	return Call[models.Board](ctx, c, http.MethodGet, fmt.Sprintf("/boards/%d", boardID), nil)
}

// ListComments returns an item's comments.
func (c *Client) ListComments(ctx context.Context, boardID, itemID int64) (Response[[]models.Comment], error) {
	path := fmt.Sprintf("/boards/%d/items/%d/comments", boardID, itemID)
	return Call[[]models.Comment](ctx, c, http.MethodGet, path, nil)
}

// CreateComment posts a comment on an item.
func (c *Client) CreateComment(ctx context.Context, boardID, itemID int64, content string) (Response[models.Comment], error) {
	path := fmt.Sprintf("/boards/%d/items/%d/comments", boardID, itemID)
	return Call[models.Comment](ctx, c, http.MethodPost, path, map[string]string{"content": content})
}
