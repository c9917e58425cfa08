package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qms/backend/internal/infrastructure/circuit"
	"github.com/qms/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CircuitBreakerOptions configures CircuitBreaker
type CircuitBreakerOptions struct {
	// Name of the breaker. Defaults to "METHOD:route" per request.
	Name string
	// Options used when the breaker is created. Zero values fall back to the registry defaults.
	Options circuit.Options
	// Fallback writes the response while the breaker rejects requests.
	// Defaults to a 503 JSON body naming the breaker.
	Fallback func(c *gin.Context, name string)
}

// CircuitBreaker guards the rest of the handler chain with a breaker from reg.
// A request fails when the chain produces no response, responds with a 5xx status,
// records an error on the gin context or panics. Rejected requests never reach
// the handler; the panic of a failed request is re-raised for the recovery middleware.
func CircuitBreaker(reg *circuit.Registry, opts CircuitBreakerOptions) gin.HandlerFunc {
	fallback := opts.Fallback
	if fallback == nil {
		fallback = defaultCircuitFallback
	}
	var breakerOpts []circuit.Options
	if opts.Options != (circuit.Options{}) {
		breakerOpts = append(breakerOpts, opts.Options)
	}

	return func(c *gin.Context) {
		name := opts.Name
		if name == "" {
			name = circuitName(c)
		}
		breaker := reg.Get(name, breakerOpts...)

		generation, err := breaker.Allow()
		if err != nil {
			reg.ShortCircuited(c.Request.Context(), name)
			logger.FromContext(c.Request.Context()).Warn("request short-circuited",
				zap.String("circuit", name),
				zap.Bool("trial_in_flight", errors.Is(err, circuit.ErrTrialInFlight)),
			)
			if !c.Writer.Written() {
				fallback(c, name)
			}
			c.Abort()
			return
		}

		errorsBefore := len(c.Errors)
		completed := false
		defer func() {
			if !completed {
				breaker.RecordFailure(generation)
			}
		}()

		c.Next()
		completed = true

		if responded(c) && c.Writer.Status() < http.StatusInternalServerError && len(c.Errors) == errorsBefore {
			breaker.RecordSuccess(generation)
			return
		}
		breaker.RecordFailure(generation)
	}
}

// responded reports whether the chain produced a response. A status set with
// c.Status is only flushed after the chain returns, so a non-default status
// counts as a response too.
func responded(c *gin.Context) bool {
	return c.Writer.Written() || c.Writer.Status() != http.StatusOK
}

func circuitName(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	return c.Request.Method + ":" + path
}

func defaultCircuitFallback(c *gin.Context, name string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":          "Service Unavailable",
		"message":        "The service is temporarily unavailable. Please try again later.",
		"circuitBreaker": name,
	})
}
