package events

import "time"

// Event is anything the concierge emits onto the in-process bus. The
// publisher serializes Payload and stamps EventType and Timestamp as message
// metadata, so consumers can route without decoding the body.
type Event interface {
	// EventType is the routing code, e.g. "CONCIERGE_TURN_RECORDED".
	EventType() string

	// Payload is the serializable body of the event.
	Payload() map[string]interface{}

	// Timestamp is when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a ready-made Event for ad-hoc emissions that do not warrant
// their own type.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
