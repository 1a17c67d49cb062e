// Package live maintains the push-stream subscription for a board: one
// transport connection at a time, automatic bounded reconnection, and
// dispatch of decoded events into the entity caches.
package live

import (
	"context"

	"github.com/taskflow/client-go/internal/models"
)

// Transport opens one subscription stream against the server. Implementations
// exist for SSE and WebSocket; the subscriber drives either through this
// interface.
type Transport interface {
	// Open establishes a stream scoped to the board. The token travels as a
	// query parameter because browser-style stream clients cannot set
	// headers, and the server accepts only that form.
	Open(ctx context.Context, boardID int64, token string) (Stream, error)
}

// Stream is one live connection. Events is closed when the connection ends,
// after which Err reports the cause (nil for a deliberate Close).
type Stream interface {
	Events() <-chan models.Event
	Err() error
	Close() error
}
