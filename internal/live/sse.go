package live

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/taskflow/client-go/internal/errors"
	"github.com/taskflow/client-go/internal/logging"
	"github.com/taskflow/client-go/internal/models"
)

// SSETransport subscribes over Server-Sent Events, the server's primary push
// channel.
type SSETransport struct {
	baseURL string
	client  *http.Client
}

// NewSSETransport creates a transport against the given API base URL. The
// HTTP client carries no timeout; streams are long-lived and are torn down
// through the open context.
func NewSSETransport(baseURL string) *SSETransport {
	return &SSETransport{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// Open subscribes to the board's event stream.
func (t *SSETransport) Open(ctx context.Context, boardID int64, token string) (Stream, error) {
	endpoint := fmt.Sprintf("%s/sse/subscribe?boardId=%d&token=%s", t.baseURL, boardID, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.New(errors.ErrTransport, fmt.Sprintf("subscribe failed with status %d", resp.StatusCode))
	}

	s := &sseStream{
		body:   resp.Body,
		events: make(chan models.Event, 16),
	}
	go s.read()
	return s, nil
}

type sseStream struct {
	body   io.ReadCloser
	events chan models.Event

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *sseStream) Events() <-chan models.Event { return s.events }

func (s *sseStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *sseStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.body.Close()
}

// read parses the text/event-stream frame format: "event:" names the event,
// "data:" lines accumulate the payload, a blank line dispatches.
func (s *sseStream) read() {
	defer close(s.events)

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if name != "" || data.Len() > 0 {
				s.dispatch(name, data.Bytes())
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// comment line, used by the server as a keep-alive
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil {
		s.mu.Lock()
		if !s.closed {
			s.err = err
		}
		s.mu.Unlock()
	}
}

func (s *sseStream) dispatch(name string, payload []byte) {
	ev, err := models.ParseEvent(name, payload)
	if err != nil {
		logging.Warn("dropping unreadable stream event", map[string]any{
			"event": name,
			"cause": err.Error(),
		})
		return
	}
	s.events <- ev
}
