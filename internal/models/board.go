package models

import "time"

// ViewType represents the default view of a board.
type ViewType string

const (
	ViewTable  ViewType = "TABLE"
	ViewKanban ViewType = "KANBAN"
	ViewList   ViewType = "LIST"
)

// Board represents a collection of items shared by a set of users.
type Board struct {
	ID          int64      `json:"boardId"`
	Name        string     `json:"boardName"`
	Description string     `json:"boardDescription,omitempty"`
	OwnerID     int64      `json:"ownerId"`
	OwnerName   string     `json:"ownerName,omitempty"`
	DefaultView ViewType   `json:"defaultView,omitempty"`
	Color       string     `json:"boardColor,omitempty"`
	ShareCount  int        `json:"shareCount,omitempty"`
	ItemCount   int        `json:"itemCount,omitempty"`
	IsOwner     bool       `json:"isOwner,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// User represents a TaskFlow account.
type User struct {
	ID             int64      `json:"userId"`
	Username       string     `json:"username"`
	Name           string     `json:"name,omitempty"`
	Email          string     `json:"email,omitempty"`
	DepartmentID   int64      `json:"departmentId,omitempty"`
	DepartmentName string     `json:"departmentName,omitempty"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

// Comment represents a reply attached to an item.
type Comment struct {
	ID            int64      `json:"commentId"`
	ItemID        int64      `json:"itemId"`
	ItemTitle     string     `json:"itemTitle,omitempty"`
	Content       string     `json:"content"`
	Edited        bool       `json:"edited,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	CreatedBy     int64      `json:"createdBy,omitempty"`
	CreatedByName string     `json:"createdByName,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}
