package devserver

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
)

// wireEvent is one named frame ready to be written to a stream.
type wireEvent struct {
	name    string
	payload []byte
}

type streamClient struct {
	boardID int64
	ch      chan wireEvent
}

// hub fans events out to every stream subscribed to the event's board.
type hub struct {
	mu      sync.Mutex
	streams map[*streamClient]struct{}
}

func newHub() *hub {
	return &hub{streams: make(map[*streamClient]struct{})}
}

func (h *hub) subscribe(boardID int64) *streamClient {
	c := &streamClient{boardID: boardID, ch: make(chan wireEvent, 32)}
	h.mu.Lock()
	h.streams[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *hub) unsubscribe(c *streamClient) {
	h.mu.Lock()
	delete(h.streams, c)
	h.mu.Unlock()
}

// broadcast delivers an event to every stream on the board. Slow consumers
// are skipped rather than blocking the sender.
func (h *hub) broadcast(name string, boardID int64, data any, actor models.User) {
	payload, err := json.Marshal(map[string]any{
		"type":            name,
		"boardId":         boardID,
		"data":            data,
		"triggeredBy":     actor.ID,
		"triggeredByName": actor.Name,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logging.Error("failed to encode event", err, map[string]any{"event": name})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.streams {
		if c.boardID != boardID {
			continue
		}
		select {
		case c.ch <- wireEvent{name: name, payload: payload}:
		default:
		}
	}
}
