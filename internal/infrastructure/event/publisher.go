package event

import (
	"context"
	"fmt"

	"github.com/qms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventValidator checks events before they are published
type EventValidator interface {
	ValidateEvents(ctx context.Context, events ...shared.DomainEvent) error
}

// AggregatePublisher publishes the pending events of persisted aggregates
type AggregatePublisher struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewAggregatePublisher creates a new aggregate publisher
func NewAggregatePublisher(publisher shared.EventPublisher, logger *zap.Logger) *AggregatePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregatePublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishEvents publishes and clears each aggregate's pending events.
// Call it only after the aggregates were persisted. On error the failing
// aggregate keeps its events and later aggregates are not published.
func (p *AggregatePublisher) PublishEvents(ctx context.Context, aggregates ...shared.AggregateRoot) error {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := p.publisher.Publish(ctx, events...); err != nil {
			return fmt.Errorf("publish events of aggregate %s: %w", agg.GetID(), err)
		}
		agg.ClearDomainEvents()
		p.logger.Debug("aggregate events published",
			zap.String("aggregate_id", agg.GetID().String()),
			zap.Int("count", len(events)),
		)
	}
	return nil
}

// ValidateEvents checks the pending events of aggregates against the publisher's
// schemas. Call it before persisting so a rejected event never leaves a committed
// write behind. Publishers that cannot validate accept everything.
func (p *AggregatePublisher) ValidateEvents(ctx context.Context, aggregates ...shared.AggregateRoot) error {
	validator, ok := p.publisher.(EventValidator)
	if !ok {
		return nil
	}
	for _, agg := range aggregates {
		if err := validator.ValidateEvents(ctx, agg.GetDomainEvents()...); err != nil {
			return fmt.Errorf("events of aggregate %s: %w", agg.GetID(), err)
		}
	}
	return nil
}

// PublishCommitted publishes the pending events of aggregates that are already
// persisted. The write stands either way, so a failure is logged, not returned.
func (p *AggregatePublisher) PublishCommitted(ctx context.Context, aggregates ...shared.AggregateRoot) {
	if err := p.PublishEvents(ctx, aggregates...); err != nil {
		p.logger.Error("events of persisted aggregate not published", zap.Error(err))
	}
}
