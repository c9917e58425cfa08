// Package middleware provides the HTTP middleware of the QMS API.
package middleware

import (
	"context"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qms/backend/internal/infrastructure/logger"
)

// Request headers read or written by the middleware
const (
	RequestIDHeader = "X-Request-ID"
	UserIDHeader    = "X-User-ID"
	SessionIDHeader = "X-Session-ID"
	TenantIDHeader  = "X-Tenant-ID"
)

// MaxRequestIDLength bounds a caller-supplied request ID
const MaxRequestIDLength = 128

const requestContextKey = "request_context"

// RequestContext describes the request being served
type RequestContext struct {
	RequestID string
	UserID    string
	SessionID string
	IP        string
	UserAgent string
	StartTime time.Time
	Path      string
	Method    string
}

// RequestContextOptions configures RequestContextMiddleware
type RequestContextOptions struct {
	// GenerateID creates request IDs when the caller sent none. Defaults to uuid.NewString.
	GenerateID func() string
	// Clock defaults to time.Now
	Clock func() time.Time
}

type requestContextCtxKey struct{}

// RequestContextMiddleware attaches a RequestContext to the gin context and to the
// request's context.Context, echoes the request ID in X-Request-ID and tags the
// request logger with it. It must run before the request logger.
func RequestContextMiddleware(opts RequestContextOptions) gin.HandlerFunc {
	if opts.GenerateID == nil {
		opts.GenerateID = uuid.NewString
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = opts.GenerateID()
		}

		rc := RequestContext{
			RequestID: requestID,
			UserID:    c.GetHeader(UserIDHeader),
			SessionID: c.GetHeader(SessionIDHeader),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			StartTime: opts.Clock(),
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
		}

		c.Set(requestContextKey, rc)
		c.Set(logger.GinRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := context.WithValue(c.Request.Context(), requestContextCtxKey{}, rc)
		c.Request = c.Request.WithContext(logger.WithRequestID(ctx, requestID))

		c.Next()
	}
}

// GetRequestContext returns the RequestContext of c
func GetRequestContext(c *gin.Context) (RequestContext, bool) {
	v, ok := c.Get(requestContextKey)
	if !ok {
		return RequestContext{}, false
	}
	rc, ok := v.(RequestContext)
	return rc, ok
}

// RequestContextFrom returns the RequestContext carried by ctx
func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextCtxKey{}).(RequestContext)
	return rc, ok
}

// GetRequestID returns the request ID of c, or "" outside RequestContextMiddleware
func GetRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || r == ' ' {
			return false
		}
	}
	return true
}
