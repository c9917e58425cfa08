package shared

import "context"

// EventHandler handles domain events delivered to a subscribing context
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
}

// EventHandlerFunc adapts an ordinary function to EventHandler
type EventHandlerFunc func(ctx context.Context, event DomainEvent) error

// Handle calls f(ctx, event)
func (f EventHandlerFunc) Handle(ctx context.Context, event DomainEvent) error {
	return f(ctx, event)
}

// EventPublisher publishes domain events on behalf of a bounded context
type EventPublisher interface {
	// PublishFromContext validates and dispatches a single event
	PublishFromContext(ctx context.Context, sourceContext string, event DomainEvent) error
	// Publish dispatches events, each attributed to its own source context
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers cross-context subscriptions
type EventSubscriber interface {
	SubscribeContext(sourceContext, targetContext, eventType string, handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
}
