package store

import (
	"sync"

	"github.com/taskflow/client-go/internal/models"
)

// SessionTracker records which single item the user is actively editing and
// the unsent working values. At most one session exists per client; starting
// a new one replaces the old. The live subscriber consults it to decide
// whether a remote update must be routed to the conflict resolver instead of
// the cache.
type SessionTracker struct {
	mu      sync.RWMutex
	itemID  int64
	open    bool
	working models.Item
	dirty   models.ItemPatch
}

// NewSessionTracker creates an idle tracker.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{}
}

// StartEditing opens a session for the item. When initial is nil the current
// cache record is cloned as the working copy; an absent record yields an
// empty working copy carrying only the key.
func (s *SessionTracker) StartEditing(cache *ItemCache, id int64, initial *models.Item) {
	working := models.Item{ID: id}
	if initial != nil {
		working = initial.Clone()
		working.ID = id
	} else if item, ok := cache.Get(id); ok {
		working = item
	}

	s.mu.Lock()
	s.itemID = id
	s.open = true
	s.working = working
	s.dirty = models.ItemPatch{}
	s.mu.Unlock()
}

// UpdateWorkingCopy merges user changes into the working copy. No-op when no
// session is open.
func (s *SessionTracker) UpdateWorkingCopy(patch models.ItemPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return
	}
	s.working = patch.Apply(s.working)
	s.dirty = mergePatch(s.dirty, patch)
}

// StopEditing clears the session unconditionally.
func (s *SessionTracker) StopEditing() {
	s.mu.Lock()
	s.itemID = 0
	s.open = false
	s.working = models.Item{}
	s.dirty = models.ItemPatch{}
	s.mu.Unlock()
}

// IsEditing reports whether the given item has an open session.
func (s *SessionTracker) IsEditing(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open && s.itemID == id
}

// Editing returns the session key, or false when no session is open.
func (s *SessionTracker) Editing() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemID, s.open
}

// WorkingCopy returns a copy of the in-progress values, or nil when no
// session is open.
func (s *SessionTracker) WorkingCopy() *models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.open {
		return nil
	}
	copy := s.working.Clone()
	return &copy
}

// Changes returns the accumulated user edits of the open session.
func (s *SessionTracker) Changes() models.ItemPatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// mergePatch overlays b onto a, field by field.
func mergePatch(a, b models.ItemPatch) models.ItemPatch {
	if b.Title != nil {
		a.Title = b.Title
	}
	if b.Content != nil {
		a.Content = b.Content
	}
	if b.Description != nil {
		a.Description = b.Description
	}
	if b.Status != nil {
		a.Status = b.Status
	}
	if b.Priority != nil {
		a.Priority = b.Priority
	}
	if b.GroupID != nil {
		a.GroupID = b.GroupID
	}
	if b.AssigneeID != nil {
		a.AssigneeID = b.AssigneeID
	}
	if b.StartTime != nil {
		a.StartTime = b.StartTime
	}
	if b.EndTime != nil {
		a.EndTime = b.EndTime
	}
	if b.DueDate != nil {
		a.DueDate = b.DueDate
	}
	if b.SortOrder != nil {
		a.SortOrder = b.SortOrder
	}
	if b.CompletedAt != nil {
		a.CompletedAt = b.CompletedAt
	}
	if b.DeletedAt != nil {
		a.DeletedAt = b.DeletedAt
	}
	if b.ClearCompletedAt {
		a.ClearCompletedAt = true
		a.CompletedAt = nil
	}
	if b.ClearDeletedAt {
		a.ClearDeletedAt = true
		a.DeletedAt = nil
	}
	if b.CommentCount != nil {
		a.CommentCount = b.CommentCount
	}
	if b.Properties != nil {
		if a.Properties == nil {
			a.Properties = make(map[int64]any, len(b.Properties))
		}
		for k, v := range b.Properties {
			a.Properties[k] = v
		}
	}
	return a
}
