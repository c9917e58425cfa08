package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qms/backend/internal/infrastructure/circuit"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	clock := newFakeClock()
	reg := circuit.NewRegistry(zap.NewNop(), circuit.WithClock(clock.Now))

	status := http.StatusInternalServerError
	calls := 0
	router := gin.New()
	router.Use(CircuitBreaker(reg, CircuitBreakerOptions{
		Name:    "inspections",
		Options: circuit.Options{Threshold: 3, ResetTimeout: time.Second},
	}))
	router.GET("/inspections", func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"calls": calls})
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusInternalServerError, get(router, "/inspections").Code)
	}
	assert.Equal(t, circuit.StateOpen, reg.Get("inspections").State())

	clock.Advance(500 * time.Millisecond)
	w := get(router, "/inspections")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Service Unavailable", body["error"])
	assert.Equal(t, "inspections", body["circuitBreaker"])
	assert.Equal(t, 3, calls)

	clock.Advance(600 * time.Millisecond)
	status = http.StatusOK
	assert.Equal(t, http.StatusOK, get(router, "/inspections").Code)
	assert.Equal(t, 4, calls)
	assert.Equal(t, circuit.StateClosed, reg.Get("inspections").State())
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	clock := newFakeClock()
	reg := circuit.NewRegistry(zap.NewNop(), circuit.WithClock(clock.Now))
	router := gin.New()
	router.Use(CircuitBreaker(reg, CircuitBreakerOptions{
		Name:    "suppliers",
		Options: circuit.Options{Threshold: 1, ResetTimeout: time.Second},
	}))
	router.GET("/suppliers", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})

	assert.Equal(t, http.StatusBadGateway, get(router, "/suppliers").Code)
	clock.Advance(2 * time.Second)
	assert.Equal(t, http.StatusBadGateway, get(router, "/suppliers").Code)
	assert.Equal(t, circuit.StateOpen, reg.Get("suppliers").State())
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/suppliers").Code)
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	reg := circuit.NewRegistry(zap.NewNop())
	router := gin.New()
	router.Use(CircuitBreaker(reg, CircuitBreakerOptions{Options: circuit.Options{Threshold: 1, ResetTimeout: time.Minute}}))
	router.GET("/suppliers/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNotFound, get(router, "/suppliers/42").Code)
	}
	assert.Equal(t, circuit.StateClosed, reg.Get("GET:/suppliers/:id").State())
}

func TestCircuitBreaker_StatusOnlyResponseSucceeds(t *testing.T) {
	reg := circuit.NewRegistry(zap.NewNop())
	router := gin.New()
	router.Use(CircuitBreaker(reg, CircuitBreakerOptions{Options: circuit.Options{Threshold: 2, ResetTimeout: time.Minute}}))
	router.DELETE("/components/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/components/7", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	snap := reg.Get("DELETE:/components/:id").Snapshot()
	assert.Equal(t, "CLOSED", snap.State)
	assert.Zero(t, snap.FailureCount)
}

func TestCircuitBreaker_PanicCountsAsFailure(t *testing.T) {
	reg := circuit.NewRegistry(zap.NewNop())
	handled := 0
	router := gin.New()
	router.Use(logger.Recovery(zap.NewNop()))
	router.Use(CircuitBreaker(reg, CircuitBreakerOptions{
		Name:    "panicky",
		Options: circuit.Options{Threshold: 1, ResetTimeout: time.Minute},
	}))
	router.GET("/panic", func(c *gin.Context) {
		handled++
		panic("boom")
	})

	assert.Equal(t, http.StatusInternalServerError, get(router, "/panic").Code)
	assert.Equal(t, circuit.StateOpen, reg.Get("panicky").State())
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/panic").Code)
	assert.Equal(t, 1, handled)
}

func TestCircuitBreaker_UnwrittenResponseAndRecordedErrorsFail(t *testing.T) {
	reg := circuit.NewRegistry(zap.NewNop())
	router := gin.New()
	opts := CircuitBreakerOptions{Options: circuit.Options{Threshold: 1, ResetTimeout: time.Minute}}
	router.GET("/silent", CircuitBreaker(reg, opts), func(c *gin.Context) {})
	router.GET("/errored", CircuitBreaker(reg, opts), func(c *gin.Context) {
		c.Status(http.StatusOK)
		c.Writer.WriteHeaderNow()
		_ = c.Error(assert.AnError)
	})

	get(router, "/silent")
	assert.Equal(t, circuit.StateOpen, reg.Get("GET:/silent").State())

	get(router, "/errored")
	assert.Equal(t, circuit.StateOpen, reg.Get("GET:/errored").State())
}

func TestCircuitBreaker_CustomFallback(t *testing.T) {
	reg := circuit.NewRegistry(zap.NewNop())
	breaker := reg.Get("reports", circuit.Options{Threshold: 1, ResetTimeout: time.Minute})
	gen, err := breaker.Allow()
	require.NoError(t, err)
	breaker.RecordFailure(gen)

	router := gin.New()
	router.Use(CircuitBreaker(reg, CircuitBreakerOptions{
		Name: "reports",
		Fallback: func(c *gin.Context, name string) {
			c.JSON(http.StatusOK, gin.H{"cached": true, "circuit": name})
		},
	}))
	router.GET("/reports", func(c *gin.Context) {
		t.Fatal("handler must not run while the circuit is open")
	})

	w := get(router, "/reports")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, "reports", body["circuit"])
	assert.Len(t, reg.Snapshot(), 1)
}
