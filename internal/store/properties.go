package store

import (
	"sort"
	"sync"

	"github.com/taskflow/client-go/internal/models"
)

// PropertyCache holds the property definitions of the active board. It is
// fed by the initial fetch and kept current by property:updated push events.
type PropertyCache struct {
	mu   sync.RWMutex
	defs []models.PropertyDef

	Changes Notifier
}

// NewPropertyCache creates an empty cache.
func NewPropertyCache() *PropertyCache {
	return &PropertyCache{}
}

// ReplaceAll replaces every definition.
func (c *PropertyCache) ReplaceAll(defs []models.PropertyDef) {
	c.mu.Lock()
	c.defs = append([]models.PropertyDef(nil), defs...)
	c.mu.Unlock()
	c.Changes.Publish()
}

// Upsert inserts the definition or replaces an existing one with the same ID.
func (c *PropertyCache) Upsert(def models.PropertyDef) {
	c.mu.Lock()
	replaced := false
	for i := range c.defs {
		if c.defs[i].ID == def.ID {
			c.defs[i] = def
			replaced = true
			break
		}
	}
	if !replaced {
		c.defs = append(c.defs, def)
	}
	c.mu.Unlock()
	c.Changes.Publish()
}

// RemoveOne deletes the definition. No-op if absent.
func (c *PropertyCache) RemoveOne(id int64) {
	c.mu.Lock()
	for i := range c.defs {
		if c.defs[i].ID == id {
			c.defs = append(c.defs[:i], c.defs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.Changes.Publish()
}

// Get returns the definition by ID.
func (c *PropertyCache) Get(id int64) (models.PropertyDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.defs {
		if c.defs[i].ID == id {
			return c.defs[i], true
		}
	}
	return models.PropertyDef{}, false
}

// All returns every definition.
func (c *PropertyCache) All() []models.PropertyDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.PropertyDef(nil), c.defs...)
}

// Visible returns non-deleted, visible definitions in sort order.
func (c *PropertyCache) Visible() []models.PropertyDef {
	c.mu.RLock()
	var out []models.PropertyDef
	for i := range c.defs {
		if !c.defs[i].Deleted && c.defs[i].Visible {
			out = append(out, c.defs[i])
		}
	}
	c.mu.RUnlock()
	sort.SliceStable(out, func(a, b int) bool { return out[a].SortOrder < out[b].SortOrder })
	return out
}
