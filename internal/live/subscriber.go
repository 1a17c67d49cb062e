package live

import (
	"context"
	"sync"
	"time"

	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
	"github.com/taskflow/client-go/internal/store"
)

// Status is the connection state of the subscriber.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

const (
	defaultReconnectDelay = 3 * time.Second
	defaultMaxAttempts    = 10
)

// TokenSource supplies the bearer token for the stream subscription. The
// REST client satisfies it.
type TokenSource interface {
	AccessToken() string
}

// Options tunes the reconnect policy. Zero values take the defaults.
type Options struct {
	ReconnectDelay time.Duration
	MaxAttempts    int
}

// Subscriber owns the live connection for one board at a time. A broken
// stream is retried with a fixed delay up to a bounded number of attempts;
// exhausting them parks the subscriber in StatusError and fires the
// connection-lost handler exactly once. Incoming events are folded into the
// entity caches, except item updates for the record under edit, which are
// routed to the conflict handler instead.
type Subscriber struct {
	transport Transport
	tokens    TokenSource
	items     *store.ItemCache
	props     *store.PropertyCache
	session   *store.SessionTracker
	delay     time.Duration
	maxTries  int

	// StatusChanges fires on every connection state transition.
	StatusChanges store.Notifier

	mu         sync.Mutex
	status     Status
	boardID    int64
	attempts   int
	lastEvent  time.Time
	stream     Stream
	cancel     context.CancelFunc
	retry      *time.Timer
	gen        int
	lostSent   bool
	onConflict func(remote models.Item, meta models.EventMeta)
	onLost     func()
}

// NewSubscriber wires a subscriber over the given transport and caches.
func NewSubscriber(t Transport, tokens TokenSource, items *store.ItemCache, props *store.PropertyCache, session *store.SessionTracker, opts Options) *Subscriber {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	return &Subscriber{
		transport: t,
		tokens:    tokens,
		items:     items,
		props:     props,
		session:   session,
		delay:     opts.ReconnectDelay,
		maxTries:  opts.MaxAttempts,
		status:    StatusDisconnected,
	}
}

// OnConflict installs the handler invoked when a remote update collides with
// the record under edit. The cache is left untouched for that event.
func (s *Subscriber) OnConflict(fn func(remote models.Item, meta models.EventMeta)) {
	s.mu.Lock()
	s.onConflict = fn
	s.mu.Unlock()
}

// OnConnectionLost installs the handler fired once when reconnect attempts
// are exhausted.
func (s *Subscriber) OnConnectionLost(fn func()) {
	s.mu.Lock()
	s.onLost = fn
	s.mu.Unlock()
}

// Status returns the current connection state.
func (s *Subscriber) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// BoardID returns the board the subscriber is attached to, or 0.
func (s *Subscriber) BoardID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boardID
}

// LastEventTime returns the arrival time of the most recent event, zero if
// none arrived yet.
func (s *Subscriber) LastEventTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEvent
}

// Connect attaches to the board's event stream. Calling while a connection
// attempt is underway or established is a no-op.
func (s *Subscriber) Connect(boardID int64) error {
	if s.tokens.AccessToken() == "" {
		return errors.New(errors.ErrUnauthorized, "cannot subscribe without a session")
	}

	s.mu.Lock()
	if s.status == StatusConnecting || s.status == StatusConnected {
		s.mu.Unlock()
		return nil
	}
	s.teardownLocked()
	s.gen++
	gen := s.gen
	s.boardID = boardID
	s.attempts = 0
	s.lostSent = false
	changed := s.setStatusLocked(StatusConnecting)
	s.mu.Unlock()
	if changed {
		s.StatusChanges.Publish()
	}

	go s.open(gen, boardID)
	return nil
}

// SubscribeToBoard switches the subscription to another board, tearing down
// the old stream first. Already being attached to the board is a no-op only
// while connected or connecting; a matching board in the disconnected or
// error state reconnects, so callers can reuse it to recover a dead session
// without checking status first.
func (s *Subscriber) SubscribeToBoard(boardID int64) error {
	s.mu.Lock()
	current, status := s.boardID, s.status
	s.mu.Unlock()
	if current == boardID && (status == StatusConnected || status == StatusConnecting) {
		return nil
	}
	s.Disconnect()
	return s.Connect(boardID)
}

// Disconnect tears the stream down deliberately: the retry timer is
// cancelled and no reconnection is attempted.
func (s *Subscriber) Disconnect() {
	s.mu.Lock()
	s.gen++
	s.teardownLocked()
	s.boardID = 0
	s.attempts = 0
	s.lostSent = false
	changed := s.setStatusLocked(StatusDisconnected)
	s.mu.Unlock()
	if changed {
		s.StatusChanges.Publish()
	}
}

// open dials the transport and, on success, pumps events until the stream
// ends. gen guards against a Disconnect or board switch racing the dial.
func (s *Subscriber) open(gen int, boardID int64) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()

	stream, err := s.transport.Open(ctx, boardID, s.tokens.AccessToken())
	if err != nil {
		logging.Warn("live stream dial failed", map[string]any{
			"board": boardID,
			"cause": err.Error(),
		})
		s.streamBroken(gen, boardID)
		return
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		stream.Close()
		cancel()
		return
	}
	s.stream = stream
	s.attempts = 0
	s.lostSent = false
	changed := s.setStatusLocked(StatusConnected)
	s.mu.Unlock()
	if changed {
		s.StatusChanges.Publish()
	}
	logging.Info("live stream connected", map[string]any{"board": boardID})

	for ev := range stream.Events() {
		s.handle(ev)
	}
	s.streamBroken(gen, boardID)
}

// streamBroken handles an unexpected end of stream: schedule a retry with
// the fixed delay, or give up once the attempt budget is spent.
func (s *Subscriber) streamBroken(gen int, boardID int64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.closeStreamLocked()
	s.attempts++
	attempt := s.attempts
	changed := s.setStatusLocked(StatusError)

	if attempt > s.maxTries {
		notify := !s.lostSent
		s.lostSent = true
		onLost := s.onLost
		s.mu.Unlock()
		if changed {
			s.StatusChanges.Publish()
		}
		logging.Error("live stream gave up reconnecting", nil, map[string]any{
			"board":    boardID,
			"attempts": attempt - 1,
		})
		if notify && onLost != nil {
			onLost()
		}
		return
	}

	s.retry = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.retry = nil
		reconnecting := s.setStatusLocked(StatusConnecting)
		s.mu.Unlock()
		if reconnecting {
			s.StatusChanges.Publish()
		}
		s.open(gen, boardID)
	})
	s.mu.Unlock()
	if changed {
		s.StatusChanges.Publish()
	}
	logging.Warn("live stream disconnected, retrying", map[string]any{
		"board":   boardID,
		"attempt": attempt,
	})
}

// handle folds one event into the caches.
func (s *Subscriber) handle(ev models.Event) {
	s.mu.Lock()
	s.lastEvent = time.Now()
	onConflict := s.onConflict
	s.mu.Unlock()

	switch e := ev.(type) {
	case models.ItemCreatedEvent:
		// Scope to the loaded board; the key check makes redelivery and the
		// echo of our own create idempotent.
		if e.BoardID == s.items.BoardID() && !s.items.Contains(e.Item.ID) {
			s.items.InsertOne(e.Item)
		}
	case models.ItemUpdatedEvent:
		if s.session.IsEditing(e.Item.ID) {
			if onConflict != nil {
				onConflict(e.Item, e.EventMeta)
			}
			return
		}
		s.items.SetOne(e.Item.ID, e.Item)
	case models.ItemDeletedEvent:
		// A DELETED status is a soft delete and keeps the record visible in
		// the trash view; anything else removes it.
		if e.Item.IsDeleted() {
			s.items.SetOne(e.Item.ID, e.Item)
		} else {
			s.items.RemoveOne(e.Item.ID)
		}
	case models.PropertyUpdatedEvent:
		if e.Property.Deleted {
			s.props.RemoveOne(e.Property.ID)
		} else {
			s.props.Upsert(e.Property)
		}
	case models.CommentCreatedEvent:
		if item, ok := s.items.Get(e.Comment.ItemID); ok {
			count := item.CommentCount + 1
			s.items.PatchOne(item.ID, models.ItemPatch{CommentCount: &count})
		}
	case models.ConnectionEvent:
		logging.Debug("live stream acknowledged", map[string]any{"board": e.BoardID})
	case models.HeartbeatEvent:
		// liveness only, lastEvent already recorded
	}
}

// teardownLocked stops the retry timer and closes any open stream. Callers
// hold s.mu.
func (s *Subscriber) teardownLocked() {
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	s.closeStreamLocked()
}

func (s *Subscriber) closeStreamLocked() {
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// setStatusLocked updates the state and reports whether it changed. Callers
// hold s.mu and publish StatusChanges after releasing it.
func (s *Subscriber) setStatusLocked(st Status) bool {
	if s.status == st {
		return false
	}
	s.status = st
	return true
}
