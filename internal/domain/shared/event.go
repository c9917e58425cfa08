package shared

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Payload is the body of a domain event, keyed by field name
type Payload map[string]any

// DomainEvent is an immutable fact published by a bounded context.
// Fields are unexported so an event cannot be altered once created;
// Payload returns a copy.
type DomainEvent struct {
	id            uuid.UUID
	eventType     string
	sourceContext string
	payload       Payload
	timestamp     time.Time
}

// NewDomainEvent creates a new domain event stamped with a fresh ID and the current time
func NewDomainEvent(eventType, sourceContext string, payload Payload) DomainEvent {
	return DomainEvent{
		id:            uuid.New(),
		eventType:     eventType,
		sourceContext: sourceContext,
		payload:       maps.Clone(payload),
		timestamp:     time.Now(),
	}
}

// ID returns the unique event identifier
func (e DomainEvent) ID() uuid.UUID {
	return e.id
}

// Type returns the type of the event
func (e DomainEvent) Type() string {
	return e.eventType
}

// SourceContext returns the bounded context that produced the event
func (e DomainEvent) SourceContext() string {
	return e.sourceContext
}

// Payload returns a copy of the event payload
func (e DomainEvent) Payload() Payload {
	return maps.Clone(e.payload)
}

// Value returns a single payload field
func (e DomainEvent) Value(field string) (any, bool) {
	v, ok := e.payload[field]
	return v, ok
}

// String returns a payload field as string, or "" if absent or not a string
func (e DomainEvent) String(field string) string {
	s, _ := e.payload[field].(string)
	return s
}

// Timestamp returns when the event occurred
func (e DomainEvent) Timestamp() time.Time {
	return e.timestamp
}

// WithSource returns a copy of the event attributed to another source context
func (e DomainEvent) WithSource(sourceContext string) DomainEvent {
	e.sourceContext = sourceContext
	return e
}

// IsZero reports whether the event was never initialised
func (e DomainEvent) IsZero() bool {
	return e.id == uuid.Nil && e.eventType == ""
}
