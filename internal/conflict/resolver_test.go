package conflict

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/models"
	"github.com/taskflow/client-go/internal/store"
)

type fakeUpdater struct {
	mu      sync.Mutex
	patches []models.ItemPatch
	fail    bool
}

func (u *fakeUpdater) UpdateItem(ctx context.Context, boardID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	u.mu.Lock()
	u.patches = append(u.patches, patch)
	u.mu.Unlock()
	if u.fail {
		return nil, errors.New(errors.ErrTransport, "update failed")
	}
	saved := models.Item{ID: itemID, BoardID: boardID, Status: models.StatusNotStarted}
	if patch.Title != nil {
		saved.Title = *patch.Title
	}
	return &saved, nil
}

type memJournal struct {
	mu       sync.Mutex
	detected []models.ConflictLog
	resolved map[int64]string
}

func newMemJournal() *memJournal {
	return &memJournal{resolved: make(map[int64]string)}
}

func (j *memJournal) RecordDetected(ctx context.Context, entry models.ConflictLog) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.ID = int64(len(j.detected) + 1)
	j.detected = append(j.detected, entry)
	return entry.ID, nil
}

func (j *memJournal) RecordResolved(ctx context.Context, id int64, resolution string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.resolved[id] = resolution
	return nil
}

func (j *memJournal) resolutionOf(id int64) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.resolved[id]
}

func conflictFixture(t *testing.T) (*Resolver, *store.ItemCache, *store.SessionTracker, *fakeUpdater, *memJournal) {
	t.Helper()
	items := store.NewItemCache()
	items.SetBoardID(1)
	items.ReplaceAll([]models.Item{{
		ID: 1, BoardID: 1, Title: "original",
		Status: models.StatusNotStarted, Priority: models.PriorityNormal,
	}})
	session := store.NewSessionTracker()
	updater := &fakeUpdater{}
	journal := newMemJournal()
	resolver := NewResolver(items, session, updater, journal)
	return resolver, items, session, updater, journal
}

func openConflict(t *testing.T, resolver *Resolver, items *store.ItemCache, session *store.SessionTracker) {
	t.Helper()
	session.StartEditing(items, 1, nil)
	local := "my edit"
	session.UpdateWorkingCopy(models.ItemPatch{Title: &local})

	remote := models.Item{ID: 1, BoardID: 1, Title: "their edit", Status: models.StatusNotStarted}
	resolver.Observe(remote, models.EventMeta{BoardID: 1, TriggeredByName: "Bob Lee", Timestamp: time.Now()})

	if !resolver.HasConflict() {
		t.Fatal("Expected a pending conflict")
	}
}

func TestObserveCapturesBothVersions(t *testing.T) {
	resolver, items, session, _, journal := conflictFixture(t)
	openConflict(t, resolver, items, session)

	d, ok := resolver.Pending()
	if !ok {
		t.Fatal("Expected pending descriptor")
	}
	if d.Local.Title != "my edit" {
		t.Errorf("Expected local working copy captured, got %q", d.Local.Title)
	}
	if d.Remote.Title != "their edit" {
		t.Errorf("Expected remote record captured, got %q", d.Remote.Title)
	}
	if d.UpdatedBy != "Bob Lee" {
		t.Errorf("Expected remote actor name, got %q", d.UpdatedBy)
	}
	if got, _ := items.Get(1); got.Title != "original" {
		t.Errorf("Expected cache untouched at detection, got %q", got.Title)
	}

	journal.mu.Lock()
	defer journal.mu.Unlock()
	if len(journal.detected) != 1 || journal.detected[0].Resolution != models.ResolutionPending {
		t.Errorf("Expected one pending journal entry, got %+v", journal.detected)
	}
}

func TestObserveSecondConflictReplacesFirst(t *testing.T) {
	resolver, items, session, _, _ := conflictFixture(t)
	openConflict(t, resolver, items, session)

	newer := models.Item{ID: 1, BoardID: 1, Title: "even newer", Status: models.StatusNotStarted}
	resolver.Observe(newer, models.EventMeta{BoardID: 1, TriggeredByName: "Carol"})

	d, _ := resolver.Pending()
	if d.Remote.Title != "even newer" || d.UpdatedBy != "Carol" {
		t.Errorf("Expected newer conflict to replace the first, got %q by %q", d.Remote.Title, d.UpdatedBy)
	}
}

func TestObserveWithoutSessionAppliesUpdate(t *testing.T) {
	resolver, items, _, _, _ := conflictFixture(t)

	remote := models.Item{ID: 1, BoardID: 1, Title: "plain update", Status: models.StatusNotStarted}
	resolver.Observe(remote, models.EventMeta{BoardID: 1})

	if resolver.HasConflict() {
		t.Error("Expected no conflict without an edit session")
	}
	if got, _ := items.Get(1); got.Title != "plain update" {
		t.Errorf("Expected update applied, got %q", got.Title)
	}
}

func TestResolveKeepLocalPushesWorkingCopy(t *testing.T) {
	resolver, items, session, updater, journal := conflictFixture(t)
	openConflict(t, resolver, items, session)

	if err := resolver.ResolveKeepLocal(context.Background()); err != nil {
		t.Fatalf("ResolveKeepLocal failed: %v", err)
	}

	updater.mu.Lock()
	if len(updater.patches) != 1 || updater.patches[0].Title == nil || *updater.patches[0].Title != "my edit" {
		t.Errorf("Expected working copy sent to the server, got %+v", updater.patches)
	}
	updater.mu.Unlock()

	if resolver.HasConflict() {
		t.Error("Expected conflict cleared")
	}
	if session.IsEditing(1) {
		t.Error("Expected edit session closed")
	}
	if got := journal.resolutionOf(1); got != models.ResolutionKeepLocal {
		t.Errorf("Expected keep_local journaled, got %q", got)
	}
}

func TestResolveKeepLocalFailureKeepsConflict(t *testing.T) {
	resolver, items, session, updater, _ := conflictFixture(t)
	openConflict(t, resolver, items, session)
	updater.fail = true

	err := resolver.ResolveKeepLocal(context.Background())
	if !errors.Is(err, errors.ErrConflictSave) {
		t.Fatalf("Expected conflict-save error, got %v", err)
	}
	if !resolver.HasConflict() {
		t.Error("Expected conflict still pending after failed save")
	}
	if !session.IsEditing(1) {
		t.Error("Expected edit session still open after failed save")
	}
}

func TestResolveUseServerReplacesRecord(t *testing.T) {
	resolver, items, session, updater, journal := conflictFixture(t)
	openConflict(t, resolver, items, session)

	if err := resolver.ResolveUseServer(context.Background()); err != nil {
		t.Fatalf("ResolveUseServer failed: %v", err)
	}

	if got, _ := items.Get(1); got.Title != "their edit" {
		t.Errorf("Expected remote record committed, got %q", got.Title)
	}
	if session.IsEditing(1) {
		t.Error("Expected edit session closed")
	}
	if resolver.HasConflict() {
		t.Error("Expected conflict cleared")
	}
	updater.mu.Lock()
	if len(updater.patches) != 0 {
		t.Error("Expected no server call for use-server resolution")
	}
	updater.mu.Unlock()
	if got := journal.resolutionOf(1); got != models.ResolutionUseServer {
		t.Errorf("Expected use_server journaled, got %q", got)
	}
}

func TestResolveIgnoreKeepsEditing(t *testing.T) {
	resolver, items, session, _, journal := conflictFixture(t)
	openConflict(t, resolver, items, session)

	if err := resolver.ResolveIgnore(context.Background()); err != nil {
		t.Fatalf("ResolveIgnore failed: %v", err)
	}

	if resolver.HasConflict() {
		t.Error("Expected conflict dismissed")
	}
	if !session.IsEditing(1) {
		t.Error("Expected edit session to stay open")
	}
	if got, _ := items.Get(1); got.Title != "original" {
		t.Errorf("Expected cache untouched, got %q", got.Title)
	}
	if got := journal.resolutionOf(1); got != models.ResolutionIgnored {
		t.Errorf("Expected ignored journaled, got %q", got)
	}
}

func TestResolveWithoutConflict(t *testing.T) {
	resolver, _, _, _, _ := conflictFixture(t)

	if err := resolver.ResolveKeepLocal(context.Background()); !errors.Is(err, errors.ErrNoConflict) {
		t.Errorf("Expected no-conflict error, got %v", err)
	}
	if err := resolver.ResolveUseServer(context.Background()); !errors.Is(err, errors.ErrNoConflict) {
		t.Errorf("Expected no-conflict error, got %v", err)
	}
	if err := resolver.ResolveIgnore(context.Background()); !errors.Is(err, errors.ErrNoConflict) {
		t.Errorf("Expected no-conflict error, got %v", err)
	}
}
