package store

import (
	"time"

	"github.com/taskflow/client-go/internal/models"
)

// Derived read-only views over the item cache. All of them return copies
// computed under the read lock; none of them mutate state.

// Active returns items that are neither completed nor deleted.
func (c *ItemCache) Active() []models.Item {
	return c.filter(func(i *models.Item) bool { return i.IsActive() })
}

// Completed returns completed items.
func (c *ItemCache) Completed() []models.Item {
	return c.filter(func(i *models.Item) bool { return i.Status == models.StatusCompleted })
}

// Deleted returns soft-deleted items.
func (c *ItemCache) Deleted() []models.Item {
	return c.filter(func(i *models.Item) bool { return i.Status == models.StatusDeleted })
}

// Pending returns items waiting on something external.
func (c *ItemCache) Pending() []models.Item {
	return c.filter(func(i *models.Item) bool { return i.Status == models.StatusPending })
}

// Overdue returns active items past their due date.
func (c *ItemCache) Overdue(now time.Time) []models.Item {
	return c.filter(func(i *models.Item) bool { return i.IsOverdue(now) })
}

// CompletedToday returns items completed or deleted today, used by the
// "hide finished work until tomorrow" display rule.
func (c *ItemCache) CompletedToday(now time.Time) []models.Item {
	y, m, d := now.Local().Date()
	sameDay := func(t *time.Time) bool {
		if t == nil {
			return false
		}
		ty, tm, td := t.Local().Date()
		return ty == y && tm == m && td == d
	}
	return c.filter(func(i *models.Item) bool {
		if i.Status == models.StatusCompleted {
			return sameDay(i.CompletedAt)
		}
		if i.Status == models.StatusDeleted {
			return sameDay(i.DeletedAt)
		}
		return false
	})
}

// ByStatus groups every item by status, for the kanban view.
func (c *ItemCache) ByStatus() map[models.ItemStatus][]models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[models.ItemStatus][]models.Item)
	for i := range c.items {
		out[c.items[i].Status] = append(out[c.items[i].Status], c.items[i].Clone())
	}
	return out
}

// ByGroup groups active items by group ID. Ungrouped items land under 0.
func (c *ItemCache) ByGroup() map[int64][]models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int64][]models.Item)
	for i := range c.items {
		if !c.items[i].IsActive() {
			continue
		}
		out[c.items[i].GroupID] = append(out[c.items[i].GroupID], c.items[i].Clone())
	}
	return out
}

func (c *ItemCache) filter(keep func(*models.Item) bool) []models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Item
	for i := range c.items {
		if keep(&c.items[i]) {
			out = append(out, c.items[i].Clone())
		}
	}
	return out
}
