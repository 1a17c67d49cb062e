// Package models provides data model definitions for the TaskFlow client.
package models

import "time"

// ItemStatus represents the lifecycle state of an item.
type ItemStatus string

const (
	StatusNotStarted ItemStatus = "NOT_STARTED"
	StatusInProgress ItemStatus = "IN_PROGRESS"
	StatusPending    ItemStatus = "PENDING"
	StatusCompleted  ItemStatus = "COMPLETED"
	StatusDeleted    ItemStatus = "DELETED"
)

// Priority represents the urgency of an item.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityNormal Priority = "NORMAL"
	PriorityLow    Priority = "LOW"
)

// Item represents a task item on a board. The server is the source of truth;
// the client holds items in memory keyed by ID.
type Item struct {
	ID             int64         `json:"itemId"`
	BoardID        int64         `json:"boardId"`
	BoardName      string        `json:"boardName,omitempty"`
	GroupID        int64         `json:"groupId,omitempty"`
	GroupName      string        `json:"groupName,omitempty"`
	GroupColor     string        `json:"groupColor,omitempty"`
	Title          string        `json:"title"`
	Content        string        `json:"content,omitempty"`
	Description    string        `json:"description,omitempty"`
	Status         ItemStatus    `json:"status"`
	Priority       Priority      `json:"priority"`
	AssigneeID     int64         `json:"assigneeId,omitempty"`
	AssigneeName   string        `json:"assigneeName,omitempty"`
	StartTime      *time.Time    `json:"startTime,omitempty"`
	EndTime        *time.Time    `json:"endTime,omitempty"`
	DueDate        *time.Time    `json:"dueDate,omitempty"`
	SortOrder      int           `json:"sortOrder,omitempty"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	DeletedAt      *time.Time    `json:"deletedAt,omitempty"`
	CommentCount   int           `json:"commentCount,omitempty"`
	CreatedAt      *time.Time    `json:"createdAt,omitempty"`
	CreatedBy      int64         `json:"createdBy,omitempty"`
	CreatedByName  string        `json:"createdByName,omitempty"`
	UpdatedAt      *time.Time    `json:"updatedAt,omitempty"`
	UpdatedBy      int64         `json:"updatedBy,omitempty"`
	UpdatedByName  string        `json:"updatedByName,omitempty"`
	PropertyValues map[int64]any `json:"propertyValues,omitempty"`
}

// IsCompleted reports whether the item is completed.
func (i *Item) IsCompleted() bool {
	return i.Status == StatusCompleted
}

// IsDeleted reports whether the item is soft-deleted.
func (i *Item) IsDeleted() bool {
	return i.Status == StatusDeleted
}

// IsActive reports whether the item should appear in the main list.
func (i *Item) IsActive() bool {
	return !i.IsCompleted() && !i.IsDeleted()
}

// IsOverdue reports whether the item is past its due date and still active.
// Comparison is at day granularity in local time, matching the board views.
func (i *Item) IsOverdue(now time.Time) bool {
	if i.DueDate == nil || !i.IsActive() {
		return false
	}
	due := startOfDay(*i.DueDate)
	return due.Before(startOfDay(now))
}

// OverdueDays returns the number of whole days the item is overdue, or 0.
func (i *Item) OverdueDays(now time.Time) int {
	if !i.IsOverdue(now) {
		return 0
	}
	diff := startOfDay(now).Sub(startOfDay(*i.DueDate))
	return int(diff.Hours() / 24)
}

// Clone returns a deep copy of the item. Cache snapshots and edit-session
// working copies must never share the property map with the cached record.
func (i *Item) Clone() Item {
	out := *i
	if i.PropertyValues != nil {
		out.PropertyValues = make(map[int64]any, len(i.PropertyValues))
		for k, v := range i.PropertyValues {
			out.PropertyValues[k] = v
		}
	}
	return out
}

// AsPatch returns a patch carrying the item's editable fields. Used when a
// whole working copy is pushed to the server, e.g. resolving a conflict in
// favor of the local edit.
func (i *Item) AsPatch() ItemPatch {
	clone := i.Clone()
	p := ItemPatch{
		Title:      &clone.Title,
		Status:     &clone.Status,
		Priority:   &clone.Priority,
		Properties: clone.PropertyValues,
	}
	if clone.Content != "" {
		p.Content = &clone.Content
	}
	if clone.Description != "" {
		p.Description = &clone.Description
	}
	if clone.GroupID != 0 {
		p.GroupID = &clone.GroupID
	}
	if clone.AssigneeID != 0 {
		p.AssigneeID = &clone.AssigneeID
	}
	p.StartTime = clone.StartTime
	p.EndTime = clone.EndTime
	p.DueDate = clone.DueDate
	if clone.SortOrder != 0 {
		p.SortOrder = &clone.SortOrder
	}
	return p
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// ItemPatch is a partial update to an item. Nil fields are left untouched.
type ItemPatch struct {
	Title        *string       `json:"title,omitempty"`
	Content      *string       `json:"content,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Status       *ItemStatus   `json:"status,omitempty"`
	Priority     *Priority     `json:"priority,omitempty"`
	GroupID      *int64        `json:"groupId,omitempty"`
	AssigneeID   *int64        `json:"assigneeId,omitempty"`
	StartTime    *time.Time    `json:"startTime,omitempty"`
	EndTime      *time.Time    `json:"endTime,omitempty"`
	DueDate      *time.Time    `json:"dueDate,omitempty"`
	SortOrder    *int          `json:"sortOrder,omitempty"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
	DeletedAt    *time.Time    `json:"deletedAt,omitempty"`
	CommentCount *int          `json:"commentCount,omitempty"`
	Properties   map[int64]any `json:"properties,omitempty"`

	// ClearCompletedAt and ClearDeletedAt distinguish "set to nil" from
	// "leave alone", which pointer fields alone cannot express. Used by
	// restore.
	ClearCompletedAt bool `json:"-"`
	ClearDeletedAt   bool `json:"-"`
}

// Apply merges the patch into a copy of the item and returns it.
func (p ItemPatch) Apply(item Item) Item {
	out := item.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.GroupID != nil {
		out.GroupID = *p.GroupID
	}
	if p.AssigneeID != nil {
		out.AssigneeID = *p.AssigneeID
	}
	if p.StartTime != nil {
		t := *p.StartTime
		out.StartTime = &t
	}
	if p.EndTime != nil {
		t := *p.EndTime
		out.EndTime = &t
	}
	if p.DueDate != nil {
		t := *p.DueDate
		out.DueDate = &t
	}
	if p.SortOrder != nil {
		out.SortOrder = *p.SortOrder
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		out.CompletedAt = &t
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		out.DeletedAt = &t
	}
	if p.ClearCompletedAt {
		out.CompletedAt = nil
	}
	if p.ClearDeletedAt {
		out.DeletedAt = nil
	}
	if p.CommentCount != nil {
		out.CommentCount = *p.CommentCount
	}
	if p.Properties != nil {
		if out.PropertyValues == nil {
			out.PropertyValues = make(map[int64]any, len(p.Properties))
		}
		for k, v := range p.Properties {
			out.PropertyValues[k] = v
		}
	}
	return out
}
