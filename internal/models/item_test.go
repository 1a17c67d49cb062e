package models

import (
	"testing"
	"time"
)

func TestItemLifecyclePredicates(t *testing.T) {
	tests := []struct {
		status    ItemStatus
		completed bool
		deleted   bool
		active    bool
	}{
		{StatusNotStarted, false, false, true},
		{StatusInProgress, false, false, true},
		{StatusPending, false, false, true},
		{StatusCompleted, true, false, false},
		{StatusDeleted, false, true, false},
	}
	for _, tt := range tests {
		item := Item{Status: tt.status}
		if item.IsCompleted() != tt.completed {
			t.Errorf("%s: IsCompleted = %v", tt.status, item.IsCompleted())
		}
		if item.IsDeleted() != tt.deleted {
			t.Errorf("%s: IsDeleted = %v", tt.status, item.IsDeleted())
		}
		if item.IsActive() != tt.active {
			t.Errorf("%s: IsActive = %v", tt.status, item.IsActive())
		}
	}
}

func TestItemOverdueDayGranularity(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	dueEarlierToday := time.Date(2026, 3, 10, 1, 0, 0, 0, time.Local)
	item := Item{Status: StatusNotStarted, DueDate: &dueEarlierToday}
	if item.IsOverdue(now) {
		t.Error("Expected due-today item not to be overdue")
	}

	dueYesterday := now.AddDate(0, 0, -1)
	item.DueDate = &dueYesterday
	if !item.IsOverdue(now) {
		t.Error("Expected yesterday's item to be overdue")
	}
	if days := item.OverdueDays(now); days != 1 {
		t.Errorf("Expected 1 day overdue, got %d", days)
	}

	item.Status = StatusCompleted
	if item.IsOverdue(now) {
		t.Error("Expected completed item never to be overdue")
	}
}

func TestCloneIsolatesPropertyMap(t *testing.T) {
	item := Item{ID: 1, PropertyValues: map[int64]any{3: "a"}}
	clone := item.Clone()
	clone.PropertyValues[3] = "b"
	if item.PropertyValues[3] != "a" {
		t.Errorf("Expected clone to own its map, got %v", item.PropertyValues[3])
	}
}

func TestPatchApply(t *testing.T) {
	due := time.Now()
	item := Item{ID: 1, Title: "old", Status: StatusNotStarted, Priority: PriorityNormal, CompletedAt: &due}

	title := "new"
	status := StatusInProgress
	out := ItemPatch{Title: &title, Status: &status, Properties: map[int64]any{4: 8}}.Apply(item)

	if out.Title != "new" || out.Status != StatusInProgress {
		t.Errorf("Expected patched fields, got %q/%s", out.Title, out.Status)
	}
	if out.Priority != PriorityNormal {
		t.Errorf("Expected untouched priority, got %s", out.Priority)
	}
	if out.PropertyValues[4] != 8 {
		t.Errorf("Expected property merged, got %v", out.PropertyValues[4])
	}
	if item.Title != "old" {
		t.Error("Expected Apply to leave the input alone")
	}
}

func TestPatchClearFlags(t *testing.T) {
	now := time.Now()
	item := Item{ID: 1, Status: StatusCompleted, CompletedAt: &now, DeletedAt: &now}

	status := StatusNotStarted
	out := ItemPatch{Status: &status, ClearCompletedAt: true, ClearDeletedAt: true}.Apply(item)

	if out.CompletedAt != nil || out.DeletedAt != nil {
		t.Error("Expected timestamps cleared")
	}
	if out.Status != StatusNotStarted {
		t.Errorf("Expected restored status, got %s", out.Status)
	}
}

func TestAsPatchCarriesWorkingCopy(t *testing.T) {
	due := time.Now()
	item := Item{
		ID: 1, Title: "mine", Status: StatusInProgress, Priority: PriorityHigh,
		Description: "details", DueDate: &due, PropertyValues: map[int64]any{2: "x"},
	}

	patch := item.AsPatch()
	if patch.Title == nil || *patch.Title != "mine" {
		t.Error("Expected title carried")
	}
	if patch.Status == nil || *patch.Status != StatusInProgress {
		t.Error("Expected status carried")
	}
	if patch.Description == nil || *patch.Description != "details" {
		t.Error("Expected description carried")
	}
	if patch.DueDate == nil || !patch.DueDate.Equal(due) {
		t.Error("Expected due date carried")
	}
	if patch.Properties[2] != "x" {
		t.Error("Expected property values carried")
	}
}
