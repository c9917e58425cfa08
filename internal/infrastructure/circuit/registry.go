package circuit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithClock replaces the wall clock
func WithClock(c Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithMetrics reports transitions and short-circuits to m
func WithMetrics(m *telemetry.CoreMetrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithDefaultOptions sets the options used when Get is called without options
func WithDefaultOptions(o Options) RegistryOption {
	return func(r *Registry) {
		r.defaults = o.withDefaults()
	}
}

// Registry creates breakers lazily, one per name, and keeps them for the process lifetime
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	defaults Options
	clock    Clock
	logger   *zap.Logger
	metrics  *telemetry.CoreMetrics
}

// NewRegistry creates an empty breaker registry
func NewRegistry(logger *zap.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		breakers: make(map[string]*Breaker),
		defaults: DefaultOptions(),
		clock:    time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the breaker for name, creating it with opts (or the registry
// defaults) on first use. Options passed for an existing breaker are ignored.
func (r *Registry) Get(name string, opts ...Options) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}

	o := r.defaults
	if len(opts) > 0 {
		o = opts[0]
	}
	b := newBreaker(name, o, r.clock, r.logger, r.metrics)
	r.breakers[name] = b

	r.logger.Debug("circuit breaker created",
		zap.String("circuit", name),
		zap.Int("threshold", b.opts.Threshold),
		zap.Duration("reset_timeout", b.opts.ResetTimeout),
	)
	return b
}

// ShortCircuited records a call rejected by the named breaker
func (r *Registry) ShortCircuited(ctx context.Context, name string) {
	r.metrics.ShortCircuited(ctx, name)
}

// Snapshot returns the state of every breaker ordered by name
func (r *Registry) Snapshot() []Snapshot {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(breakers))
	for _, b := range breakers {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clear removes every breaker
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakers = make(map[string]*Breaker)
}
