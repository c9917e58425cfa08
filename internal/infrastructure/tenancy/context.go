// Package tenancy scopes every request to exactly one tenant. The active
// tenant travels in the request's context.Context, so concurrent requests
// never observe each other's tenant.
package tenancy

import (
	"context"
	"time"
)

// TenantContext describes the tenant a request acts for
type TenantContext struct {
	TenantID  string
	IP        string
	UserAgent string
	RequestID string
	CreatedAt time.Time
}

// Metadata is request information recorded alongside the tenant
type Metadata struct {
	IP        string
	UserAgent string
	RequestID string
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying tc
func NewContext(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, contextKey{}, &tc)
}

// FromContext returns the tenant context carried by ctx
func FromContext(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(contextKey{}).(*TenantContext)
	if !ok || tc == nil {
		return TenantContext{}, false
	}
	return *tc, true
}

// TenantID returns the active tenant ID, or "" if none is set
func TenantID(ctx context.Context) string {
	tc, _ := FromContext(ctx)
	return tc.TenantID
}

// withoutTenant masks any tenant set further up the context chain
func withoutTenant(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, (*TenantContext)(nil))
}
