package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType enumerates the named events carried by the push stream.
type EventType string

const (
	EventItemCreated     EventType = "item:created"
	EventItemUpdated     EventType = "item:updated"
	EventItemDeleted     EventType = "item:deleted"
	EventPropertyUpdated EventType = "property:updated"
	EventCommentCreated  EventType = "comment:created"
	EventConnection      EventType = "connection"
	EventHeartbeat       EventType = "heartbeat"
)

// EventMeta carries the envelope fields shared by every push event.
type EventMeta struct {
	BoardID         int64     `json:"boardId,omitempty"`
	TriggeredBy     int64     `json:"triggeredBy,omitempty"`
	TriggeredByName string    `json:"triggeredByName,omitempty"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
}

// Event is the closed union of push events. Consumers dispatch with a type
// switch over the concrete event structs.
type Event interface {
	Type() EventType
	Meta() EventMeta
}

// ItemCreatedEvent carries a newly created item.
type ItemCreatedEvent struct {
	EventMeta
	Item Item
}

func (ItemCreatedEvent) Type() EventType   { return EventItemCreated }
func (e ItemCreatedEvent) Meta() EventMeta { return e.EventMeta }

// ItemUpdatedEvent carries the full updated item record.
type ItemUpdatedEvent struct {
	EventMeta
	Item Item
}

func (ItemUpdatedEvent) Type() EventType   { return EventItemUpdated }
func (e ItemUpdatedEvent) Meta() EventMeta { return e.EventMeta }

// ItemDeletedEvent carries the deleted item. A DELETED status marks a soft
// delete; anything else means the record is gone from the server.
type ItemDeletedEvent struct {
	EventMeta
	Item Item
}

func (ItemDeletedEvent) Type() EventType   { return EventItemDeleted }
func (e ItemDeletedEvent) Meta() EventMeta { return e.EventMeta }

// PropertyUpdatedEvent carries a created, updated or deleted property
// definition. Deletion is flagged on the payload, not a separate event.
type PropertyUpdatedEvent struct {
	EventMeta
	Property PropertyDef
}

func (PropertyUpdatedEvent) Type() EventType   { return EventPropertyUpdated }
func (e PropertyUpdatedEvent) Meta() EventMeta { return e.EventMeta }

// CommentCreatedEvent carries a new comment on an item.
type CommentCreatedEvent struct {
	EventMeta
	Comment Comment
}

func (CommentCreatedEvent) Type() EventType   { return EventCommentCreated }
func (e CommentCreatedEvent) Meta() EventMeta { return e.EventMeta }

// ConnectionEvent is the server hello sent right after subscribing.
type ConnectionEvent struct {
	EventMeta
}

func (ConnectionEvent) Type() EventType   { return EventConnection }
func (e ConnectionEvent) Meta() EventMeta { return e.EventMeta }

// HeartbeatEvent is a liveness signal with no cache effect.
type HeartbeatEvent struct {
	EventMeta
}

func (HeartbeatEvent) Type() EventType   { return EventHeartbeat }
func (e HeartbeatEvent) Meta() EventMeta { return e.EventMeta }

// eventEnvelope is the wire shape of a push event payload.
type eventEnvelope struct {
	Type            EventType       `json:"type,omitempty"`
	BoardID         int64           `json:"boardId,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	TriggeredBy     int64           `json:"triggeredBy,omitempty"`
	TriggeredByName string          `json:"triggeredByName,omitempty"`
	Timestamp       string          `json:"timestamp,omitempty"`
}

// ParseEvent decodes a named push event and its JSON payload into a typed
// event. Unknown event names return an error so the subscriber can log and
// drop them instead of guessing.
func ParseEvent(name string, payload []byte) (Event, error) {
	var env eventEnvelope
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("malformed event payload for %q: %w", name, err)
		}
	}

	meta := EventMeta{
		BoardID:         env.BoardID,
		TriggeredBy:     env.TriggeredBy,
		TriggeredByName: env.TriggeredByName,
	}
	if env.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, env.Timestamp); err == nil {
			meta.Timestamp = ts
		}
	}

	switch EventType(name) {
	case EventItemCreated:
		var item Item
		if err := json.Unmarshal(env.Data, &item); err != nil {
			return nil, fmt.Errorf("decode item for %s: %w", name, err)
		}
		return ItemCreatedEvent{EventMeta: meta, Item: item}, nil
	case EventItemUpdated:
		var item Item
		if err := json.Unmarshal(env.Data, &item); err != nil {
			return nil, fmt.Errorf("decode item for %s: %w", name, err)
		}
		return ItemUpdatedEvent{EventMeta: meta, Item: item}, nil
	case EventItemDeleted:
		var item Item
		if err := json.Unmarshal(env.Data, &item); err != nil {
			return nil, fmt.Errorf("decode item for %s: %w", name, err)
		}
		return ItemDeletedEvent{EventMeta: meta, Item: item}, nil
	case EventPropertyUpdated:
		var def PropertyDef
		if err := json.Unmarshal(env.Data, &def); err != nil {
			return nil, fmt.Errorf("decode property for %s: %w", name, err)
		}
		return PropertyUpdatedEvent{EventMeta: meta, Property: def}, nil
	case EventCommentCreated:
		var comment Comment
		if err := json.Unmarshal(env.Data, &comment); err != nil {
			return nil, fmt.Errorf("decode comment for %s: %w", name, err)
		}
		return CommentCreatedEvent{EventMeta: meta, Comment: comment}, nil
	case EventConnection:
		return ConnectionEvent{EventMeta: meta}, nil
	case EventHeartbeat:
		return HeartbeatEvent{EventMeta: meta}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", name)
	}
}
