// Package conflict holds the pending edit conflict and the three ways to
// resolve it: keep the local working copy, take the server's version, or
// ignore and keep editing.
package conflict

import (
	"context"
	"sync"
	"time"

	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
	"github.com/taskflow/client-go/internal/store"
)

// Descriptor captures one collision: the working copy at detection time and
// the remote record that arrived for the same item.
type Descriptor struct {
	ItemID    int64
	Local     models.Item
	Remote    models.Item
	UpdatedBy string
	UpdatedAt time.Time
}

// Updater saves the local working copy through the normal update path. The
// item service satisfies it.
type Updater interface {
	UpdateItem(ctx context.Context, boardID, itemID int64, patch models.ItemPatch) (*models.Item, error)
}

// Journal records detections and resolutions for later review. A nil journal
// disables recording.
type Journal interface {
	RecordDetected(ctx context.Context, entry models.ConflictLog) (int64, error)
	RecordResolved(ctx context.Context, id int64, resolution string) error
}

// Resolver holds at most one pending conflict. A second collision before the
// first is resolved replaces it; the newer remote state is the one worth
// showing.
type Resolver struct {
	items   *store.ItemCache
	session *store.SessionTracker
	updater Updater
	journal Journal

	// Changes fires when a conflict appears, is replaced, or is resolved.
	Changes store.Notifier

	mu        sync.Mutex
	pending   *Descriptor
	journalID int64
}

// NewResolver wires a resolver. journal may be nil.
func NewResolver(items *store.ItemCache, session *store.SessionTracker, updater Updater, journal Journal) *Resolver {
	return &Resolver{items: items, session: session, updater: updater, journal: journal}
}

// Observe receives a remote update that collided with the open edit session.
// It is the subscriber's conflict handler.
func (r *Resolver) Observe(remote models.Item, meta models.EventMeta) {
	local := r.session.WorkingCopy()
	if local == nil || local.ID != remote.ID {
		// The session closed in the meantime; treat it as a plain update.
		r.items.SetOne(remote.ID, remote)
		return
	}

	updatedBy := meta.TriggeredByName
	if updatedBy == "" {
		updatedBy = remote.UpdatedByName
	}
	updatedAt := meta.Timestamp
	if updatedAt.IsZero() && remote.UpdatedAt != nil {
		updatedAt = *remote.UpdatedAt
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	d := &Descriptor{
		ItemID:    remote.ID,
		Local:     *local,
		Remote:    remote.Clone(),
		UpdatedBy: updatedBy,
		UpdatedAt: updatedAt,
	}

	r.mu.Lock()
	replaced := r.pending != nil
	r.pending = d
	r.journalID = 0
	r.mu.Unlock()

	if replaced {
		logging.Warn("pending conflict replaced by newer remote update", map[string]any{
			"item": remote.ID,
		})
	}
	logging.Info("edit conflict detected", map[string]any{
		"item":      remote.ID,
		"updatedBy": updatedBy,
	})

	if r.journal != nil {
		id, err := r.journal.RecordDetected(context.Background(), models.ConflictLog{
			ItemID:          d.ItemID,
			BoardID:         remote.BoardID,
			RemoteActor:     updatedBy,
			RemoteTimestamp: updatedAt.Unix(),
			Resolution:      models.ResolutionPending,
			DetectedAt:      time.Now().Unix(),
		})
		if err != nil {
			logging.Warn("conflict journal write failed", map[string]any{"cause": err.Error()})
		} else {
			r.mu.Lock()
			if r.pending == d {
				r.journalID = id
			}
			r.mu.Unlock()
		}
	}

	r.Changes.Publish()
}

// Pending returns a copy of the unresolved conflict, if any.
func (r *Resolver) Pending() (Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return Descriptor{}, false
	}
	return *r.pending, true
}

// HasConflict reports whether a conflict awaits resolution.
func (r *Resolver) HasConflict() bool {
	_, ok := r.Pending()
	return ok
}

// ResolveKeepLocal pushes the local working copy through the normal update
// path, overwriting the remote edit. On success the edit session ends and
// the conflict clears; on failure the conflict stays pending.
func (r *Resolver) ResolveKeepLocal(ctx context.Context) error {
	r.mu.Lock()
	d := r.pending
	r.mu.Unlock()
	if d == nil {
		return errors.New(errors.ErrNoConflict, "no conflict to resolve")
	}

	boardID := d.Remote.BoardID
	if boardID == 0 {
		boardID = r.items.BoardID()
	}
	if _, err := r.updater.UpdateItem(ctx, boardID, d.ItemID, d.Local.AsPatch()); err != nil {
		return errors.Wrap(errors.ErrConflictSave, "failed to save your version", err)
	}

	r.session.StopEditing()
	r.clear(ctx, d, models.ResolutionKeepLocal)
	return nil
}

// ResolveUseServer discards the local edit: the remote record replaces the
// cached one and the edit session ends.
func (r *Resolver) ResolveUseServer(ctx context.Context) error {
	r.mu.Lock()
	d := r.pending
	r.mu.Unlock()
	if d == nil {
		return errors.New(errors.ErrNoConflict, "no conflict to resolve")
	}

	r.items.SetOne(d.ItemID, d.Remote)
	r.session.StopEditing()
	r.clear(ctx, d, models.ResolutionUseServer)
	return nil
}

// ResolveIgnore dismisses the conflict without touching the cache or the
// edit session; the user keeps editing and decides later.
func (r *Resolver) ResolveIgnore(ctx context.Context) error {
	r.mu.Lock()
	d := r.pending
	r.mu.Unlock()
	if d == nil {
		return errors.New(errors.ErrNoConflict, "no conflict to resolve")
	}

	r.clear(ctx, d, models.ResolutionIgnored)
	return nil
}

// Reset drops any pending conflict without recording a resolution. Used when
// the session disconnects or switches boards.
func (r *Resolver) Reset() {
	r.mu.Lock()
	had := r.pending != nil
	r.pending = nil
	r.journalID = 0
	r.mu.Unlock()
	if had {
		r.Changes.Publish()
	}
}

func (r *Resolver) clear(ctx context.Context, d *Descriptor, resolution string) {
	r.mu.Lock()
	var journalID int64
	if r.pending == d {
		journalID = r.journalID
		r.pending = nil
		r.journalID = 0
	}
	r.mu.Unlock()

	if r.journal != nil && journalID != 0 {
		if err := r.journal.RecordResolved(ctx, journalID, resolution); err != nil {
			logging.Warn("conflict journal write failed", map[string]any{"cause": err.Error()})
		}
	}
	r.Changes.Publish()
}
