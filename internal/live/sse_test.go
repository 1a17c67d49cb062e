package live

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskflow/client-go/internal/models"
)

func TestSSETransportParsesFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sse/subscribe" {
			t.Errorf("Expected subscribe path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "secret" || r.URL.Query().Get("boardId") != "1" {
			t.Errorf("Expected token and board in query, got %s", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "event: connection\ndata: {\"type\":\"connection\",\"boardId\":1}\n\n")
		fmt.Fprint(w, "event: item:updated\n")
		fmt.Fprint(w, "data: {\"type\":\"item:updated\",\"boardId\":1,\n")
		fmt.Fprint(w, "data: \"data\":{\"itemId\":5,\"title\":\"split\"}}\n\n")
		fmt.Fprint(w, "event: board:archived\ndata: {}\n\n")
		fmt.Fprint(w, "event: heartbeat\ndata: {\"type\":\"heartbeat\"}\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	transport := NewSSETransport(server.URL)
	stream, err := transport.Open(context.Background(), 1, "secret")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer stream.Close()

	var got []models.Event
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				t.Fatalf("Stream ended early with %d events, err %v", len(got), stream.Err())
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("Timed out with %d events", len(got))
		}
	}

	if _, ok := got[0].(models.ConnectionEvent); !ok {
		t.Errorf("Expected connection event first, got %T", got[0])
	}
	updated, ok := got[1].(models.ItemUpdatedEvent)
	if !ok {
		t.Fatalf("Expected item update second, got %T", got[1])
	}
	if updated.Item.ID != 5 || updated.Item.Title != "split" {
		t.Errorf("Expected multi-line data joined, got %+v", updated.Item)
	}
	// The unknown event name is dropped, so the heartbeat comes third.
	if _, ok := got[2].(models.HeartbeatEvent); !ok {
		t.Errorf("Expected heartbeat third, got %T", got[2])
	}
}

func TestSSETransportRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	transport := NewSSETransport(server.URL)
	if _, err := transport.Open(context.Background(), 1, "bad"); err == nil {
		t.Fatal("Expected an error for a rejected subscription")
	}
}

func TestSSEStreamEndsWhenServerCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: heartbeat\ndata: {}\n\n")
	}))
	defer server.Close()

	transport := NewSSETransport(server.URL)
	stream, err := transport.Open(context.Background(), 1, "token")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-stream.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Expected events channel to close when the server hung up")
		}
	}
}
