// Package store provides the in-memory entity caches shared by the mutation
// coordinator, the live subscriber and UI readers, plus the edit-session
// tracker used for conflict detection.
package store

import "sync"

// Notifier is a minimal observer list. Subscribers are invoked after every
// committed cache mutation; callbacks must be quick and must not mutate the
// cache synchronously.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]func()
	next int
}

// Subscribe registers fn and returns a cancel function.
func (n *Notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Publish invokes every subscriber. Callbacks run outside the subscriber
// lock so they may themselves subscribe or cancel.
func (n *Notifier) Publish() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
