// Package circuit implements per-name circuit breakers that stop calling a
// failing dependency until it has had time to recover.
package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// State is the state of a circuit breaker
type State int

// Breaker states
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Default breaker settings
const (
	DefaultThreshold    = 5
	DefaultResetTimeout = 60 * time.Second
)

var (
	// ErrOpen is returned by Allow while the circuit is open
	ErrOpen = errors.New("circuit breaker is open")
	// ErrTrialInFlight is returned by Allow while a half-open trial is running
	ErrTrialInFlight = errors.New("circuit breaker trial request in progress")
)

// Options configures a breaker
type Options struct {
	// Threshold is the number of consecutive failures that opens the circuit
	Threshold int
	// ResetTimeout is how long the circuit stays open after the last failure
	ResetTimeout time.Duration
}

// DefaultOptions returns the default breaker options
func DefaultOptions() Options {
	return Options{
		Threshold:    DefaultThreshold,
		ResetTimeout: DefaultResetTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.ResetTimeout <= 0 {
		o.ResetTimeout = DefaultResetTimeout
	}
	return o
}

// Clock returns the current time
type Clock func() time.Time

// Snapshot is a point-in-time view of a breaker
type Snapshot struct {
	Name          string        `json:"name"`
	State         string        `json:"state"`
	FailureCount  int           `json:"failureCount"`
	LastFailureAt time.Time     `json:"lastFailureAt,omitzero"`
	Threshold     int           `json:"threshold"`
	ResetTimeout  time.Duration `json:"resetTimeout"`
}

// Breaker is a CLOSED -> OPEN -> HALF_OPEN -> CLOSED state machine.
//
// CLOSED admits every call and opens once Threshold consecutive failures are
// recorded. OPEN rejects every call until ResetTimeout has passed since the last
// failure, then moves to HALF_OPEN. HALF_OPEN admits exactly one trial call: its
// success closes the circuit, its failure opens it again. The failure count is
// only reset when the state changes.
//
// Every state change starts a new generation. Allow hands out the generation a
// call was admitted under and results from an older generation are dropped, so
// only the admitted trial can move the breaker out of HALF_OPEN.
type Breaker struct {
	name    string
	opts    Options
	clock   Clock
	logger  *zap.Logger
	metrics *telemetry.CoreMetrics

	mu            sync.Mutex
	state         State
	failureCount  int
	lastFailureAt time.Time
	trialInFlight bool
	generation    uint64
}

func newBreaker(name string, opts Options, clock Clock, logger *zap.Logger, metrics *telemetry.CoreMetrics) *Breaker {
	return &Breaker{
		name:    name,
		opts:    opts.withDefaults(),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		state:   StateClosed,
	}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, moving OPEN to HALF_OPEN if the reset timeout has passed
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()
	return b.state
}

// Allow reports whether a call may proceed and returns the generation it was
// admitted under. Every successful Allow must be followed by exactly one
// RecordSuccess or RecordFailure carrying that generation.
func (b *Breaker) Allow() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()

	switch b.state {
	case StateOpen:
		return b.generation, ErrOpen
	case StateHalfOpen:
		if b.trialInFlight {
			return b.generation, ErrTrialInFlight
		}
		b.trialInFlight = true
	}
	return b.generation, nil
}

// RecordSuccess records a successful call admitted under generation
func (b *Breaker) RecordSuccess(generation uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()
	if generation != b.generation {
		return
	}

	if b.state == StateHalfOpen {
		b.trialInFlight = false
		b.transition(StateClosed)
	}
}

// RecordFailure records a failed call admitted under generation
func (b *Breaker) RecordFailure(generation uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()
	if generation != b.generation {
		return
	}

	b.lastFailureAt = b.clock()

	switch b.state {
	case StateHalfOpen:
		b.trialInFlight = false
		b.transition(StateOpen)
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.opts.Threshold {
			b.transition(StateOpen)
		}
	}
}

// Snapshot returns the current breaker state
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()

	return Snapshot{
		Name:          b.name,
		State:         b.state.String(),
		FailureCount:  b.failureCount,
		LastFailureAt: b.lastFailureAt,
		Threshold:     b.opts.Threshold,
		ResetTimeout:  b.opts.ResetTimeout,
	}
}

// maybeHalfOpen must be called with mu held
func (b *Breaker) maybeHalfOpen() {
	if b.state == StateOpen && b.clock().Sub(b.lastFailureAt) >= b.opts.ResetTimeout {
		b.transition(StateHalfOpen)
	}
}

// transition must be called with mu held
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.generation++
	b.failureCount = 0
	if to == StateOpen {
		b.lastFailureAt = b.clock()
	}

	fields := []zap.Field{
		zap.String("circuit", b.name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	}
	if to == StateOpen {
		b.logger.Warn("circuit breaker opened", fields...)
	} else {
		b.logger.Info("circuit breaker state changed", fields...)
	}
	b.metrics.CircuitTransition(context.Background(), b.name, from.String(), to.String())
}
