package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultHandlerTimeout bounds a single handler invocation
const DefaultHandlerTimeout = 5 * time.Second

// Handler outcomes reported to telemetry
const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomePanic   = "panic"
	outcomeTimeout = "timeout"
)

// ErrHandlerTimeout is reported when a handler does not return within the handler timeout
var ErrHandlerTimeout = errors.New("event handler timed out")

// Option configures a DomainEventBus
type Option func(*DomainEventBus)

// WithHandlerTimeout sets the per-handler timeout. Non-positive values keep the default.
func WithHandlerTimeout(d time.Duration) Option {
	return func(b *DomainEventBus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

// WithMetrics reports publish and handler outcomes to m
func WithMetrics(m *telemetry.CoreMetrics) Option {
	return func(b *DomainEventBus) {
		b.metrics = m
	}
}

// WithTracer overrides the tracer used for publish spans
func WithTracer(t trace.Tracer) Option {
	return func(b *DomainEventBus) {
		b.tracer = t
	}
}

// DomainEventBus is the in-process publish/subscribe hub between bounded contexts.
// Every published event is validated against its registered schema before any
// subscriber sees it. Subscribers of one event type run one after another in
// registration order; a failing, panicking or hung subscriber is logged and
// does not stop the ones after it.
type DomainEventBus struct {
	schemas        *SchemaRegistry
	subscriptions  *SubscriptionRegistry
	logger         *zap.Logger
	metrics        *telemetry.CoreMetrics
	tracer         trace.Tracer
	handlerTimeout time.Duration
}

// NewDomainEventBus creates a new event bus
func NewDomainEventBus(logger *zap.Logger, opts ...Option) *DomainEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &DomainEventBus{
		schemas:        NewSchemaRegistry(),
		subscriptions:  NewSubscriptionRegistry(),
		logger:         logger,
		tracer:         otel.Tracer("github.com/qms/backend/internal/infrastructure/event"),
		handlerTimeout: DefaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterEventSchema stores the schema for eventType; the last registration wins
func (b *DomainEventBus) RegisterEventSchema(eventType string, schema Schema) error {
	if err := b.schemas.Register(eventType, schema); err != nil {
		return err
	}
	b.logger.Debug("event schema registered",
		zap.String("event_type", eventType),
		zap.Strings("required_fields", schema.RequiredFields),
	)
	return nil
}

// Schemas exposes the schema registry
func (b *DomainEventBus) Schemas() *SchemaRegistry {
	return b.schemas
}

// SubscribeContext registers handler in targetContext for eventType events from sourceContext
func (b *DomainEventBus) SubscribeContext(sourceContext, targetContext, eventType string, handler shared.EventHandler) {
	b.subscriptions.Add(Subscription{
		SourceContext: sourceContext,
		TargetContext: targetContext,
		EventType:     eventType,
		Handler:       handler,
	})
	b.logger.Debug("context subscribed",
		zap.String("event_type", eventType),
		zap.String("source_context", sourceContext),
		zap.String("target_context", targetContext),
	)
}

// Subscriptions returns the subscriptions for eventType in dispatch order
func (b *DomainEventBus) Subscriptions(eventType string) []Subscription {
	return b.subscriptions.For(eventType)
}

// PublishFromContext validates event and delivers it to every subscriber of its type.
// A schema violation is returned before any subscriber runs. Handler failures are
// logged and counted but never returned; the call returns once every handler has
// finished or timed out.
func (b *DomainEventBus) PublishFromContext(ctx context.Context, sourceContext string, event shared.DomainEvent) error {
	if event.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidInput, "cannot publish an empty event")
	}
	if sourceContext != "" && sourceContext != event.SourceContext() {
		event = event.WithSource(sourceContext)
	}

	if err := b.validate(ctx, event); err != nil {
		return err
	}
	b.dispatch(ctx, event)
	return nil
}

// Publish publishes events, each from its own source context. All events are
// validated first; if any is invalid none are delivered.
func (b *DomainEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if err := b.ValidateEvents(ctx, events...); err != nil {
		return err
	}

	for _, event := range events {
		b.dispatch(ctx, event)
	}
	return nil
}

// ValidateEvents checks events against their schemas without delivering them
func (b *DomainEventBus) ValidateEvents(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, event := range events {
		if event.IsZero() {
			errs = append(errs, shared.NewDomainError(shared.CodeInvalidInput, "cannot publish an empty event"))
			continue
		}
		if err := b.validate(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *DomainEventBus) validate(ctx context.Context, event shared.DomainEvent) error {
	if err := b.schemas.Validate(event.Type(), event.Payload()); err != nil {
		b.metrics.SchemaRejected(ctx, event.Type())
		b.logger.Warn("event rejected by schema validation",
			zap.String("event_type", event.Type()),
			zap.String("event_id", event.ID().String()),
			zap.String("source_context", event.SourceContext()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (b *DomainEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	ctx, span := b.tracer.Start(ctx, "event.publish "+event.Type(),
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("event.type", event.Type()),
			attribute.String("event.id", event.ID().String()),
			attribute.String("event.source_context", event.SourceContext()),
		),
	)
	defer span.End()

	b.metrics.EventPublished(ctx, event.Type(), event.SourceContext())

	subs := b.subscriptions.For(event.Type())
	failed := 0
	for _, sub := range subs {
		if err := b.dispatchToHandler(ctx, sub, event); err != nil {
			failed++
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.Type()),
				zap.String("event_id", event.ID().String()),
				zap.String("source_context", event.SourceContext()),
				zap.String("target_context", sub.TargetContext),
				zap.Error(err),
			)
		}
	}

	span.SetAttributes(
		attribute.Int("event.handlers", len(subs)),
		attribute.Int("event.handlers_failed", failed),
	)
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d handlers failed", failed, len(subs)))
	}

	b.logger.Debug("event dispatched",
		zap.String("event_type", event.Type()),
		zap.String("event_id", event.ID().String()),
		zap.Int("handlers", len(subs)),
		zap.Int("failed", failed),
	)
}

type handlerResult struct {
	err      error
	panicked bool
}

// dispatchToHandler runs one handler in its own goroutine so a panic or a hang is
// contained. A handler still running at the timeout is abandoned.
func (b *DomainEventBus) dispatchToHandler(ctx context.Context, sub Subscription, event shared.DomainEvent) error {
	hctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan handlerResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- handlerResult{err: fmt.Errorf("handler panicked: %v", r), panicked: true}
			}
		}()
		done <- handlerResult{err: sub.Handler.Handle(hctx, event)}
	}()

	var (
		err     error
		outcome string
	)
	select {
	case res := <-done:
		err = res.err
		switch {
		case res.panicked:
			outcome = outcomePanic
		case err != nil:
			outcome = outcomeError
		default:
			outcome = outcomeOK
		}
	case <-hctx.Done():
		err = fmt.Errorf("%w after %s: %w", ErrHandlerTimeout, b.handlerTimeout, hctx.Err())
		outcome = outcomeTimeout
	}

	b.metrics.HandlerCompleted(ctx, event.Type(), sub.TargetContext, outcome, time.Since(start))
	return err
}

var _ shared.EventBus = (*DomainEventBus)(nil)
