// Package mutate implements the optimistic mutation protocol: apply a change
// locally, confirm it against the server, and either commit the canonical
// response or roll the cache back to its pre-mutation state.
package mutate

import (
	"context"

	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/logging"
)

// Cache is the slice of an entity cache the coordinator needs. The item
// cache satisfies it directly; any keyed collection with patch/replace
// semantics can be driven the same way.
type Cache[K comparable, T any, P any] interface {
	// Get returns a copy of the record, or false when the key is absent.
	Get(key K) (T, bool)
	// PatchOne merges a partial update; no-op on an absent key.
	PatchOne(key K, patch P)
	// SetOne replaces the record wholesale; no-op on an absent key.
	SetOne(key K, record T)
}

// Outcome is the settled result of a remote call, mirroring the REST
// envelope: OK with an optional canonical payload, or a rejection carrying
// the server's message.
type Outcome[T any] struct {
	OK      bool
	Payload *T
	Message string
}

// Remote is the asynchronous far end of a mutation. A returned error means
// the call never settled (transport failure); a rejection settles with
// OK=false.
type Remote[T any] func(ctx context.Context) (Outcome[T], error)

// Apply runs one optimistic mutation against the cache entry for key.
//
// If the key is absent nothing local is touched; the remote result is
// forwarded as-is. Otherwise the current record is snapshotted, the patch is
// applied immediately, and the remote call decides: a payload commits (the
// server response is authoritative and may differ from the optimistic
// patch), anything else rolls back to the snapshot verbatim.
//
// Overlapping Apply calls for the same key are not serialized: the second
// call snapshots after the first call's optimistic patch, so the first
// rollback can clobber the second optimistic write. Callers that allow
// overlapping edits on one record accept that window.
func Apply[K comparable, T any, P any](ctx context.Context, cache Cache[K, T, P], key K, patch P, remote Remote[T]) (*T, error) {
	snapshot, exists := cache.Get(key)

	if !exists {
		outcome, err := remote(ctx)
		if err != nil {
			return nil, errors.Wrap(errors.ErrTransport, "mutation failed", err)
		}
		if !outcome.OK {
			return nil, rejection(outcome.Message)
		}
		return outcome.Payload, nil
	}

	cache.PatchOne(key, patch)

	outcome, err := remote(ctx)
	if err != nil {
		cache.SetOne(key, snapshot)
		logging.Warn("optimistic mutation rolled back", map[string]any{
			"key":   key,
			"cause": err.Error(),
		})
		return nil, errors.Wrap(errors.ErrTransport, "mutation failed", err)
	}
	if !outcome.OK {
		cache.SetOne(key, snapshot)
		logging.Warn("optimistic mutation rejected by server", map[string]any{
			"key":     key,
			"message": outcome.Message,
		})
		return nil, rejection(outcome.Message)
	}
	if outcome.Payload == nil {
		// Success without a canonical record cannot confirm the optimistic
		// state of an existing entry.
		cache.SetOne(key, snapshot)
		return nil, errors.New(errors.ErrAPIRejected, "mutation was not confirmed by the server")
	}

	cache.SetOne(key, *outcome.Payload)
	return outcome.Payload, nil
}

// ApplyAcked runs an optimistic mutation whose remote call acknowledges
// without returning a record (delete endpoints). The optimistic patch is
// kept on acknowledgement and rolled back on any failure. An absent key
// skips the local patch and forwards the remote result, same as Apply.
func ApplyAcked[K comparable, T any, P any](ctx context.Context, cache Cache[K, T, P], key K, patch P, remote Remote[T]) error {
	snapshot, exists := cache.Get(key)
	if !exists {
		outcome, err := remote(ctx)
		if err != nil {
			return errors.Wrap(errors.ErrTransport, "mutation failed", err)
		}
		if !outcome.OK {
			return rejection(outcome.Message)
		}
		return nil
	}

	cache.PatchOne(key, patch)

	outcome, err := remote(ctx)
	if err != nil {
		cache.SetOne(key, snapshot)
		return errors.Wrap(errors.ErrTransport, "mutation failed", err)
	}
	if !outcome.OK {
		cache.SetOne(key, snapshot)
		return rejection(outcome.Message)
	}
	if outcome.Payload != nil {
		cache.SetOne(key, *outcome.Payload)
	}
	return nil
}

func rejection(message string) error {
	if message == "" {
		message = "the server rejected the change"
	}
	return errors.New(errors.ErrAPIRejected, message)
}
