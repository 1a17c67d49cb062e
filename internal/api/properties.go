package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taskflow/client-go/internal/models"
)

// PropertyCreate is the create-property request body.
type PropertyCreate struct {
	Name         string              `json:"propertyName"`
	Type         models.PropertyType `json:"propertyType"`
	Required     bool                `json:"required,omitempty"`
	DefaultValue string              `json:"defaultValue,omitempty"`
	Visible      bool                `json:"visible,omitempty"`
}

// PropertyUpdate is a partial update to a property definition. Nil fields are
// left untouched.
type PropertyUpdate struct {
	Name         *string              `json:"propertyName,omitempty"`
	Type         *models.PropertyType `json:"propertyType,omitempty"`
	Required     *bool                `json:"required,omitempty"`
	DefaultValue *string              `json:"defaultValue,omitempty"`
	Visible      *bool                `json:"visible,omitempty"`
}

// OptionCreate is the create-option request body.
type OptionCreate struct {
	Name  string `json:"optionName"`
	Color string `json:"color,omitempty"`
}

// OptionUpdate is a partial update to a property option.
type OptionUpdate struct {
	Name  *string `json:"optionName,omitempty"`
	Color *string `json:"color,omitempty"`
}

// ListProperties returns a board's property definitions.
func (c *Client) ListProperties(ctx context.Context, boardID int64) (Response[[]models.PropertyDef], error) {
	path := fmt.Sprintf("/boards/%d/properties", boardID)
	return Call[[]models.PropertyDef](ctx, c, http.MethodGet, path, nil)
}

// CreateProperty defines a new property on the board.
func (c *Client) CreateProperty(ctx context.Context, boardID int64, req PropertyCreate) (Response[models.PropertyDef], error) {
	path := fmt.Sprintf("/boards/%d/properties", boardID)
	return Call[models.PropertyDef](ctx, c, http.MethodPost, path, req)
}

// UpdateProperty applies a partial update to a property definition. The
// property ID alone addresses it; board scope is implied server-side.
func (c *Client) UpdateProperty(ctx context.Context, propertyID int64, req PropertyUpdate) (Response[models.PropertyDef], error) {
	path := fmt.Sprintf("/properties/%d", propertyID)
	return Call[models.PropertyDef](ctx, c, http.MethodPut, path, req)
}

// DeleteProperty removes a property definition. The server acknowledges
// without a body.
func (c *Client) DeleteProperty(ctx context.Context, propertyID int64) (Response[models.PropertyDef], error) {
	path := fmt.Sprintf("/properties/%d", propertyID)
	return Call[models.PropertyDef](ctx, c, http.MethodDelete, path, nil)
}

// ListOptions returns the selectable options of a SELECT/MULTI_SELECT
// property.
func (c *Client) ListOptions(ctx context.Context, propertyID int64) (Response[[]models.PropertyOption], error) {
	path := fmt.Sprintf("/properties/%d/options", propertyID)
	return Call[[]models.PropertyOption](ctx, c, http.MethodGet, path, nil)
}

// CreateOption adds an option to a property.
func (c *Client) CreateOption(ctx context.Context, propertyID int64, req OptionCreate) (Response[models.PropertyOption], error) {
	path := fmt.Sprintf("/properties/%d/options", propertyID)
	return Call[models.PropertyOption](ctx, c, http.MethodPost, path, req)
}

// UpdateOption applies a partial update to an option.
func (c *Client) UpdateOption(ctx context.Context, optionID int64, req OptionUpdate) (Response[models.PropertyOption], error) {
	path := fmt.Sprintf("/options/%d", optionID)
	return Call[models.PropertyOption](ctx, c, http.MethodPut, path, req)
}

// DeleteOption removes an option. The server acknowledges without a body.
func (c *Client) DeleteOption(ctx context.Context, optionID int64) (Response[models.PropertyOption], error) {
	path := fmt.Sprintf("/options/%d", optionID)
	return Call[models.PropertyOption](ctx, c, http.MethodDelete, path, nil)
}
