package circuit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock, threshold int, reset time.Duration) *Breaker {
	r := NewRegistry(zap.NewNop(), WithClock(clock.Now))
	return r.Get("test", Options{Threshold: threshold, ResetTimeout: reset})
}

func fail(t *testing.T, b *Breaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		gen := admit(t, b)
		b.RecordFailure(gen)
	}
}

func admit(t *testing.T, b *Breaker) uint64 {
	t.Helper()
	gen, err := b.Allow()
	require.NoError(t, err)
	return gen
}

func allowErr(b *Breaker) error {
	_, err := b.Allow()
	return err
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 3, time.Second)

	fail(t, b, 2)
	assert.Equal(t, StateClosed, b.State())

	fail(t, b, 1)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, allowErr(b), ErrOpen)
}

func TestBreaker_ResetTimeoutAdmitsOneTrial(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 3, time.Second)
	fail(t, b, 3)

	clock.Advance(500 * time.Millisecond)
	assert.ErrorIs(t, allowErr(b), ErrOpen)

	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, allowErr(b), "first call after the reset timeout is the trial")
	assert.ErrorIs(t, allowErr(b), ErrTrialInFlight, "only one trial may run")
}

func TestBreaker_TrialSuccessCloses(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 3, time.Second)
	fail(t, b, 3)
	clock.Advance(time.Second)

	b.RecordSuccess(admit(t, b))

	assert.Equal(t, StateClosed, b.State())
	assert.Zero(t, b.Snapshot().FailureCount)
	assert.NoError(t, allowErr(b))
}

func TestBreaker_TrialFailureReopensWithFreshTimer(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 3, time.Second)
	fail(t, b, 3)
	clock.Advance(2 * time.Second)

	b.RecordFailure(admit(t, b))
	assert.Equal(t, StateOpen, b.State())

	clock.Advance(900 * time.Millisecond)
	assert.ErrorIs(t, allowErr(b), ErrOpen, "timer restarts at the trial failure")

	clock.Advance(100 * time.Millisecond)
	assert.NoError(t, allowErr(b))
}

func TestBreaker_SuccessWhileClosedKeepsCount(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 3, time.Second)

	fail(t, b, 2)
	b.RecordSuccess(admit(t, b))
	assert.Equal(t, 2, b.Snapshot().FailureCount)

	fail(t, b, 1)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_DefaultsApplied(t *testing.T) {
	b := NewRegistry(nil).Get("defaults", Options{})
	snap := b.Snapshot()
	assert.Equal(t, DefaultThreshold, snap.Threshold)
	assert.Equal(t, DefaultResetTimeout, snap.ResetTimeout)
	assert.Equal(t, "CLOSED", snap.State)
}

func TestBreaker_ConcurrentHalfOpenAdmitsOne(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 1, time.Second)
	fail(t, b, 1)
	clock.Advance(time.Second)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowErr(b) == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
}

func TestBreaker_StaleResultsIgnored(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 2, time.Second)

	slow := admit(t, b)
	fail(t, b, 2)
	require.Equal(t, StateOpen, b.State())

	clock.Advance(1100 * time.Millisecond)
	trial := admit(t, b)

	b.RecordSuccess(slow)
	assert.Equal(t, StateHalfOpen, b.State(), "a call admitted while closed cannot close the circuit")
	assert.ErrorIs(t, allowErr(b), ErrTrialInFlight)

	b.RecordFailure(slow)
	assert.Equal(t, StateHalfOpen, b.State())

	b.RecordFailure(trial)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, allowErr(b), ErrOpen)
}

func TestBreaker_StaleFailureAfterReopenIgnored(t *testing.T) {
	clock := newFakeClock()
	b := newTestBreaker(clock, 1, time.Second)

	slow := admit(t, b)
	fail(t, b, 1)
	clock.Advance(time.Second)
	b.RecordSuccess(admit(t, b))
	require.Equal(t, StateClosed, b.State())

	b.RecordFailure(slow)
	assert.Equal(t, StateClosed, b.State())
	assert.Zero(t, b.Snapshot().FailureCount)
}
