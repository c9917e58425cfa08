package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// CoreMetrics records the runtime behaviour of the event bus, the circuit
// breakers and tenant isolation. A nil *CoreMetrics is valid and records nothing,
// so components can be constructed without telemetry in tests.
type CoreMetrics struct {
	eventsPublished   *Counter
	schemaRejections  *Counter
	handlerFailures   *Counter
	handlerDuration   *Histogram
	circuitTransition *Counter
	shortCircuits     *Counter
	tenantViolations  *Counter
}

// NewCoreMetrics registers all core instruments on the given meter.
func NewCoreMetrics(meter metric.Meter) (*CoreMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &CoreMetrics{}
	var err error

	if m.eventsPublished, err = NewCounter(meter,
		"qms_events_published_total", "Domain events accepted by the event bus", "{events}"); err != nil {
		return nil, err
	}
	if m.schemaRejections, err = NewCounter(meter,
		"qms_event_schema_rejections_total", "Domain events rejected by schema validation", "{events}"); err != nil {
		return nil, err
	}
	if m.handlerFailures, err = NewCounter(meter,
		"qms_event_handler_failures_total", "Event handler invocations that failed, panicked or timed out", "{invocations}"); err != nil {
		return nil, err
	}
	if m.handlerDuration, err = NewHistogram(meter,
		"qms_event_handler_duration_seconds", "Event handler execution time", "s", HandlerDurationBuckets...); err != nil {
		return nil, err
	}
	if m.circuitTransition, err = NewCounter(meter,
		"qms_circuit_transitions_total", "Circuit breaker state transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if m.shortCircuits, err = NewCounter(meter,
		"qms_circuit_short_circuits_total", "Requests rejected by an open circuit", "{requests}"); err != nil {
		return nil, err
	}
	if m.tenantViolations, err = NewCounter(meter,
		"qms_tenant_isolation_violations_total", "Cross-tenant data access attempts", "{violations}"); err != nil {
		return nil, err
	}

	return m, nil
}

// EventPublished counts an event that passed validation.
func (m *CoreMetrics) EventPublished(ctx context.Context, eventType, sourceContext string) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc(ctx, AttrEventType.String(eventType), AttrSourceContext.String(sourceContext))
}

// SchemaRejected counts an event rejected by schema validation.
func (m *CoreMetrics) SchemaRejected(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.schemaRejections.Inc(ctx, AttrEventType.String(eventType))
}

// HandlerCompleted records one handler invocation; outcome is "ok", "error", "panic" or "timeout".
func (m *CoreMetrics) HandlerCompleted(ctx context.Context, eventType, targetContext, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrEventType.String(eventType),
		AttrTargetContext.String(targetContext),
		AttrOutcome.String(outcome),
	}
	m.handlerDuration.RecordDuration(ctx, d, attrs...)
	if outcome != "ok" {
		m.handlerFailures.Inc(ctx, attrs...)
	}
}

// CircuitTransition counts a breaker state change.
func (m *CoreMetrics) CircuitTransition(ctx context.Context, name, from, to string) {
	if m == nil {
		return
	}
	m.circuitTransition.Inc(ctx, AttrCircuit.String(name), AttrFromState.String(from), AttrToState.String(to))
}

// ShortCircuited counts a request rejected without reaching its handler.
func (m *CoreMetrics) ShortCircuited(ctx context.Context, name string) {
	if m == nil {
		return
	}
	m.shortCircuits.Inc(ctx, AttrCircuit.String(name))
}

// TenantViolation counts a cross-tenant access attempt.
func (m *CoreMetrics) TenantViolation(ctx context.Context, tenantID string) {
	if m == nil {
		return
	}
	m.tenantViolations.Inc(ctx, AttrTenantID.String(tenantID))
}
