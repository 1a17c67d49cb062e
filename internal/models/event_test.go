package models

import (
	"testing"
	"time"
)

func TestParseEventItemUpdated(t *testing.T) {
	payload := []byte(`{
		"type": "item:updated",
		"boardId": 1,
		"data": {"itemId": 42, "boardId": 1, "title": "hello", "status": "IN_PROGRESS", "priority": "HIGH"},
		"triggeredBy": 2,
		"triggeredByName": "Bob Lee",
		"timestamp": "2026-03-10T09:00:00Z"
	}`)

	ev, err := ParseEvent("item:updated", payload)
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}

	updated, ok := ev.(ItemUpdatedEvent)
	if !ok {
		t.Fatalf("Expected ItemUpdatedEvent, got %T", ev)
	}
	if updated.Item.ID != 42 || updated.Item.Status != StatusInProgress {
		t.Errorf("Expected decoded item, got %+v", updated.Item)
	}
	meta := updated.Meta()
	if meta.BoardID != 1 || meta.TriggeredBy != 2 || meta.TriggeredByName != "Bob Lee" {
		t.Errorf("Expected envelope metadata, got %+v", meta)
	}
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !meta.Timestamp.Equal(want) {
		t.Errorf("Expected parsed timestamp, got %v", meta.Timestamp)
	}
}

func TestParseEventTypes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(Event) bool
	}{
		{"item:created", `{"data": {"itemId": 1, "title": "a"}}`, func(e Event) bool {
			ev, ok := e.(ItemCreatedEvent)
			return ok && ev.Item.ID == 1
		}},
		{"item:deleted", `{"data": {"itemId": 2, "status": "DELETED"}}`, func(e Event) bool {
			ev, ok := e.(ItemDeletedEvent)
			return ok && ev.Item.IsDeleted()
		}},
		{"property:updated", `{"data": {"propertyId": 3, "propertyName": "Stage"}}`, func(e Event) bool {
			ev, ok := e.(PropertyUpdatedEvent)
			return ok && ev.Property.ID == 3
		}},
		{"comment:created", `{"data": {"commentId": 4, "itemId": 2, "content": "hi"}}`, func(e Event) bool {
			ev, ok := e.(CommentCreatedEvent)
			return ok && ev.Comment.ItemID == 2
		}},
		{"connection", `{"boardId": 1}`, func(e Event) bool {
			_, ok := e.(ConnectionEvent)
			return ok
		}},
		{"heartbeat", `{}`, func(e Event) bool {
			_, ok := e.(HeartbeatEvent)
			return ok
		}},
	}

	for _, tt := range tests {
		ev, err := ParseEvent(tt.name, []byte(tt.payload))
		if err != nil {
			t.Errorf("%s: ParseEvent failed: %v", tt.name, err)
			continue
		}
		if ev.Type() != EventType(tt.name) {
			t.Errorf("%s: Type() = %s", tt.name, ev.Type())
		}
		if !tt.check(ev) {
			t.Errorf("%s: unexpected event %+v", tt.name, ev)
		}
	}
}

func TestParseEventUnknownName(t *testing.T) {
	if _, err := ParseEvent("board:archived", []byte(`{}`)); err == nil {
		t.Error("Expected an error for an unknown event name")
	}
}

func TestParseEventMalformedPayload(t *testing.T) {
	if _, err := ParseEvent("item:updated", []byte(`{"data": "not an item"`)); err == nil {
		t.Error("Expected an error for malformed payload")
	}
}
