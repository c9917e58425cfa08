package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewDomainEvent(t *testing.T) {
	event := NewDomainEvent("CustomerCreated", "customer", Payload{"customerId": "1"})

	assert.NotEqual(t, uuid.Nil, event.ID())
	assert.Equal(t, "CustomerCreated", event.Type())
	assert.Equal(t, "customer", event.SourceContext())
	assert.Equal(t, "1", event.String("customerId"))
	assert.False(t, event.Timestamp().IsZero())
	assert.False(t, event.IsZero())
}

func TestDomainEvent_PayloadIsImmutable(t *testing.T) {
	original := Payload{"name": "Acme"}
	event := NewDomainEvent("CustomerCreated", "customer", original)

	// Mutating the caller's map must not leak into the event
	original["name"] = "Changed"
	assert.Equal(t, "Acme", event.String("name"))

	// Mutating the returned copy must not leak either
	p := event.Payload()
	p["name"] = "Changed again"
	assert.Equal(t, "Acme", event.String("name"))
}

func TestDomainEvent_WithSource(t *testing.T) {
	event := NewDomainEvent("SupplierBlocked", "supplier", nil)
	moved := event.WithSource("inspection")

	assert.Equal(t, "supplier", event.SourceContext())
	assert.Equal(t, "inspection", moved.SourceContext())
	assert.Equal(t, event.ID(), moved.ID())
}

func TestDomainEvent_Value(t *testing.T) {
	event := NewDomainEvent("InspectionFailed", "inspection", Payload{"defects": 3})

	v, ok := event.Value("defects")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = event.Value("missing")
	assert.False(t, ok)
	assert.Empty(t, event.String("defects"))
}

func TestDomainEvent_IsZero(t *testing.T) {
	var event DomainEvent
	assert.True(t, event.IsZero())
}
