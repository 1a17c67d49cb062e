package models

import "time"

// PropertyType represents the value type of a dynamic property.
type PropertyType string

const (
	PropertyText        PropertyType = "TEXT"
	PropertyNumber      PropertyType = "NUMBER"
	PropertyDate        PropertyType = "DATE"
	PropertySelect      PropertyType = "SELECT"
	PropertyMultiSelect PropertyType = "MULTI_SELECT"
	PropertyCheckbox    PropertyType = "CHECKBOX"
	PropertyUser        PropertyType = "USER"
)

// PropertyOption is a selectable option of a SELECT/MULTI_SELECT property.
type PropertyOption struct {
	ID         int64  `json:"optionId"`
	PropertyID int64  `json:"propertyId"`
	Name       string `json:"optionName"`
	Color      string `json:"color,omitempty"`
	SortOrder  int    `json:"sortOrder,omitempty"`
}

// PropertyDef defines a dynamic property of a board. Item records carry the
// values under PropertyValues keyed by the property ID.
type PropertyDef struct {
	ID           int64            `json:"propertyId"`
	BoardID      int64            `json:"boardId"`
	Name         string           `json:"propertyName"`
	Type         PropertyType     `json:"propertyType"`
	Required     bool             `json:"required,omitempty"`
	DefaultValue string           `json:"defaultValue,omitempty"`
	SortOrder    int              `json:"sortOrder,omitempty"`
	Visible      bool             `json:"visible,omitempty"`
	Deleted      bool             `json:"deleted,omitempty"`
	Options      []PropertyOption `json:"options,omitempty"`
	CreatedAt    *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time       `json:"updatedAt,omitempty"`
}
