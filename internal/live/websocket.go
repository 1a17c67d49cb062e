package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
)

// WebSocketTransport subscribes over a WebSocket carrying the same event
// envelopes as the SSE channel, one JSON frame per event with the event name
// in the "type" field.
type WebSocketTransport struct {
	baseURL string
	dialer  *websocket.Dialer
}

// NewWebSocketTransport creates a transport against the given API base URL.
func NewWebSocketTransport(baseURL string) *WebSocketTransport {
	return &WebSocketTransport{
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
	}
}

// Open dials the board's event socket.
func (t *WebSocketTransport) Open(ctx context.Context, boardID int64, token string) (Stream, error) {
	endpoint := fmt.Sprintf("%s/ws/subscribe?boardId=%d&token=%s", wsURL(t.baseURL), boardID, url.QueryEscape(token))
	conn, _, err := t.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	s := &wsStream{
		conn:   conn,
		events: make(chan models.Event, 16),
	}
	go s.read()
	return s, nil
}

func wsURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

type wsStream struct {
	conn   *websocket.Conn
	events chan models.Event

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *wsStream) Events() <-chan models.Event { return s.events }

func (s *wsStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *wsStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *wsStream) read() {
	defer close(s.events)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if !s.closed {
				s.err = err
			}
			s.mu.Unlock()
			return
		}

		var peek struct {
			Type models.EventType `json:"type"`
		}
		if err := json.Unmarshal(raw, &peek); err != nil || peek.Type == "" {
			logging.Warn("dropping unreadable socket frame", nil)
			continue
		}
		ev, err := models.ParseEvent(string(peek.Type), raw)
		if err != nil {
			logging.Warn("dropping unreadable stream event", map[string]any{
				"event": string(peek.Type),
				"cause": err.Error(),
			})
			continue
		}
		s.events <- ev
	}
}
