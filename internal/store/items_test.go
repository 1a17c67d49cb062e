package store

import (
	"testing"

	"github.com/taskflow/client-go/internal/models"
)

func makeItem(id int64, title string) models.Item {
	return models.Item{
		ID: id, BoardID: 1, Title: title,
		Status: models.StatusNotStarted, Priority: models.PriorityNormal,
	}
}

func TestItemCacheInsertPrepends(t *testing.T) {
	cache := NewItemCache()
	cache.ReplaceAll([]models.Item{makeItem(1, "first"), makeItem(2, "second")})

	cache.InsertOne(makeItem(3, "third"))

	items := cache.Items()
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if items[0].ID != 3 {
		t.Errorf("Expected new item first, got id %d", items[0].ID)
	}
}

func TestItemCachePatchAbsentKeyIsNoop(t *testing.T) {
	cache := NewItemCache()
	cache.ReplaceAll([]models.Item{makeItem(1, "only")})

	fired := 0
	cancel := cache.Changes.Subscribe(func() { fired++ })
	defer cancel()

	title := "changed"
	cache.PatchOne(99, models.ItemPatch{Title: &title})

	if fired != 0 {
		t.Errorf("Expected no notification for absent key, got %d", fired)
	}
	if got, _ := cache.Get(1); got.Title != "only" {
		t.Errorf("Expected untouched record, got title %q", got.Title)
	}
}

func TestItemCachePatchMergesAndNotifies(t *testing.T) {
	cache := NewItemCache()
	cache.ReplaceAll([]models.Item{makeItem(1, "before")})

	fired := 0
	cancel := cache.Changes.Subscribe(func() { fired++ })
	defer cancel()

	title := "after"
	status := models.StatusInProgress
	cache.PatchOne(1, models.ItemPatch{Title: &title, Status: &status})

	got, ok := cache.Get(1)
	if !ok {
		t.Fatal("Expected record to exist")
	}
	if got.Title != "after" || got.Status != models.StatusInProgress {
		t.Errorf("Expected merged record, got %q/%s", got.Title, got.Status)
	}
	if got.Priority != models.PriorityNormal {
		t.Errorf("Expected untouched field to survive, got %s", got.Priority)
	}
	if fired != 1 {
		t.Errorf("Expected 1 notification, got %d", fired)
	}
}

func TestItemCacheSetOnePreservesPosition(t *testing.T) {
	cache := NewItemCache()
	cache.ReplaceAll([]models.Item{makeItem(1, "a"), makeItem(2, "b"), makeItem(3, "c")})

	replacement := makeItem(2, "replaced")
	cache.SetOne(2, replacement)

	items := cache.Items()
	if items[1].ID != 2 || items[1].Title != "replaced" {
		t.Errorf("Expected replacement at position 1, got %d/%q", items[1].ID, items[1].Title)
	}
}

func TestItemCacheRemoveOne(t *testing.T) {
	cache := NewItemCache()
	cache.ReplaceAll([]models.Item{makeItem(1, "a"), makeItem(2, "b")})

	cache.RemoveOne(1)
	if cache.Contains(1) {
		t.Error("Expected record to be removed")
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 remaining record, got %d", cache.Len())
	}

	cache.RemoveOne(99)
	if cache.Len() != 1 {
		t.Error("Expected removing an absent key to be a no-op")
	}
}

func TestItemCacheGetReturnsCopy(t *testing.T) {
	item := makeItem(1, "original")
	item.PropertyValues = map[int64]any{10: "x"}
	cache := NewItemCache()
	cache.ReplaceAll([]models.Item{item})

	got, _ := cache.Get(1)
	got.Title = "mutated"
	got.PropertyValues[10] = "mutated"

	again, _ := cache.Get(1)
	if again.Title != "original" {
		t.Errorf("Expected cached record to be isolated, got title %q", again.Title)
	}
	if again.PropertyValues[10] != "x" {
		t.Errorf("Expected property map to be isolated, got %v", again.PropertyValues[10])
	}
}

func TestNotifierCancel(t *testing.T) {
	var n Notifier
	fired := 0
	cancel := n.Subscribe(func() { fired++ })

	n.Publish()
	cancel()
	n.Publish()

	if fired != 1 {
		t.Errorf("Expected 1 call after cancel, got %d", fired)
	}
}
