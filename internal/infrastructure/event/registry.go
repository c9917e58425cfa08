package event

import (
	"sync"

	"github.com/qms/backend/internal/domain/shared"
)

// Subscription binds a handler in targetContext to events of one type
// published by sourceContext
type Subscription struct {
	SourceContext string
	TargetContext string
	EventType     string
	Handler       shared.EventHandler
}

// SubscriptionRegistry keeps subscriptions per event type in registration order
type SubscriptionRegistry struct {
	mu   sync.RWMutex
	subs map[string][]Subscription // eventType -> subscriptions
}

// NewSubscriptionRegistry creates a new subscription registry
func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{
		subs: make(map[string][]Subscription),
	}
}

// Add appends a subscription to the end of its event type's list
func (r *SubscriptionRegistry) Add(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.EventType] = append(r.subs[sub.EventType], sub)
}

// For returns a snapshot of the subscriptions for eventType.
// Subscriptions added while a dispatch is in progress are not seen by that dispatch.
func (r *SubscriptionRegistry) For(eventType string) []Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.subs[eventType]
	result := make([]Subscription, len(subs))
	copy(result, subs)
	return result
}

// Count returns the number of subscriptions across all event types
func (r *SubscriptionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, subs := range r.subs {
		n += len(subs)
	}
	return n
}

// Clear removes all subscriptions
func (r *SubscriptionRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[string][]Subscription)
}
