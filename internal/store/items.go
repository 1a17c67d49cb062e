package store

import (
	"sync"

	"github.com/taskflow/client-go/internal/models"
)

// ItemCache holds the ordered item list for the active board. Keys are
// unique; insertion order is newest-first for display. Mutations are total:
// patching or removing an absent key is a no-op.
//
// Only the mutation coordinator and the live subscriber mutate the cache.
// Reads return copies so callers can never alias cached records.
type ItemCache struct {
	mu      sync.RWMutex
	items   []models.Item
	boardID int64

	Changes Notifier
}

// NewItemCache creates an empty cache.
func NewItemCache() *ItemCache {
	return &ItemCache{}
}

// SetBoardID records the board the cache currently represents. Used by the
// live subscriber to scope item:created events.
func (c *ItemCache) SetBoardID(boardID int64) {
	c.mu.Lock()
	c.boardID = boardID
	c.mu.Unlock()
}

// BoardID returns the active board, or 0 when none is loaded.
func (c *ItemCache) BoardID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.boardID
}

// ReplaceAll replaces the entire cache content.
func (c *ItemCache) ReplaceAll(items []models.Item) {
	c.mu.Lock()
	c.items = make([]models.Item, len(items))
	for i := range items {
		c.items[i] = items[i].Clone()
	}
	c.mu.Unlock()
	c.Changes.Publish()
}

// InsertOne prepends a record so new items show first.
func (c *ItemCache) InsertOne(item models.Item) {
	c.mu.Lock()
	c.items = append([]models.Item{item.Clone()}, c.items...)
	c.mu.Unlock()
	c.Changes.Publish()
}

// PatchOne merges a partial update into the record. No-op if the key is
// absent.
func (c *ItemCache) PatchOne(id int64, patch models.ItemPatch) {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx >= 0 {
		c.items[idx] = patch.Apply(c.items[idx])
	}
	c.mu.Unlock()
	if idx >= 0 {
		c.Changes.Publish()
	}
}

// SetOne replaces the record wholesale, preserving its list position. No-op
// if the key is absent. Used to commit canonical server responses and to
// restore snapshots.
func (c *ItemCache) SetOne(id int64, item models.Item) {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx >= 0 {
		c.items[idx] = item.Clone()
	}
	c.mu.Unlock()
	if idx >= 0 {
		c.Changes.Publish()
	}
}

// RemoveOne deletes the record. No-op if the key is absent.
func (c *ItemCache) RemoveOne(id int64) {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	c.mu.Unlock()
	if idx >= 0 {
		c.Changes.Publish()
	}
}

// Get returns a copy of the record.
func (c *ItemCache) Get(id int64) (models.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx].Clone(), true
	}
	return models.Item{}, false
}

// Contains reports whether the key is present.
func (c *ItemCache) Contains(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id) >= 0
}

// Len returns the number of cached records.
func (c *ItemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a copy of all records in display order.
func (c *ItemCache) Items() []models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyAll()
}

// indexOf must be called with the lock held.
func (c *ItemCache) indexOf(id int64) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// copyAll must be called with the lock held.
func (c *ItemCache) copyAll() []models.Item {
	out := make([]models.Item, len(c.items))
	for i := range c.items {
		out[i] = c.items[i].Clone()
	}
	return out
}
