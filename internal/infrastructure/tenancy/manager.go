package tenancy

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/logger"
	"github.com/qms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TenantColumn is the query key and database column holding the owning tenant
const TenantColumn = "tenant_id"

// Query is a set of equality conditions for a data access
type Query map[string]any

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithMetrics reports isolation violations to m
func WithMetrics(m *telemetry.CoreMetrics) ManagerOption {
	return func(mgr *Manager) {
		mgr.metrics = m
	}
}

// WithClock replaces the wall clock used for TenantContext.CreatedAt
func WithClock(clock func() time.Time) ManagerOption {
	return func(mgr *Manager) {
		mgr.clock = clock
	}
}

// Manager establishes tenant contexts and enforces isolation against them
type Manager struct {
	store   TenantStore
	audit   *AuditLogger
	metrics *telemetry.CoreMetrics
	clock   func() time.Time
}

// NewManager creates a tenant manager backed by store
func NewManager(store TenantStore, l *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		audit: NewAuditLogger(l),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetTenantContext makes tenantID the active tenant of the returned context,
// registering the tenant first if it is new.
func (m *Manager) SetTenantContext(ctx context.Context, tenantID string, md Metadata) (context.Context, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return ctx, fmt.Errorf("%w: tenant ID is empty", shared.ErrInvalidInput)
	}

	created, err := m.store.Ensure(ctx, tenantID)
	if err != nil {
		return ctx, fmt.Errorf("tenant context: %w", err)
	}
	if created {
		m.audit.Record(ctx, AuditTenantCreated, SeverityLow, zap.String("tenant_id", tenantID))
	}

	if prev, ok := FromContext(ctx); ok && prev.TenantID != tenantID {
		m.audit.Record(ctx, AuditTenantSwitched, SeverityMedium,
			zap.String("from_tenant_id", prev.TenantID),
			zap.String("tenant_id", tenantID),
		)
	}

	tc := TenantContext{
		TenantID:  tenantID,
		IP:        md.IP,
		UserAgent: md.UserAgent,
		RequestID: md.RequestID,
		CreatedAt: m.clock(),
	}
	ctx = logger.WithTenantID(NewContext(ctx, tc), tenantID)

	m.audit.Record(ctx, AuditTenantContextSet, SeverityLow,
		zap.String("tenant_id", tenantID),
		zap.String("ip", md.IP),
	)
	return ctx, nil
}

// ClearTenantContext returns a context with no active tenant
func (m *Manager) ClearTenantContext(ctx context.Context) context.Context {
	if tc, ok := FromContext(ctx); ok {
		m.audit.Record(ctx, AuditTenantCleared, SeverityLow,
			zap.String("tenant_id", tc.TenantID),
			zap.Duration("duration", m.clock().Sub(tc.CreatedAt)),
		)
	}
	return withoutTenant(ctx)
}

// Current returns the active tenant context or ErrNoTenantContext
func (m *Manager) Current(ctx context.Context) (TenantContext, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return TenantContext{}, shared.ErrNoTenantContext
	}
	return tc, nil
}

// ApplyTenantIsolation returns a copy of q restricted to the active tenant.
// A conflicting tenant condition already in q is replaced and audited.
func (m *Manager) ApplyTenantIsolation(ctx context.Context, q Query) (Query, error) {
	tc, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	out := make(Query, len(q)+1)
	maps.Copy(out, q)
	if existing, ok := out[TenantColumn]; ok && existing != tc.TenantID {
		m.audit.Record(ctx, AuditTenantQueryRewrite, SeverityMedium,
			zap.String("tenant_id", tc.TenantID),
			zap.Any("requested_tenant_id", existing),
		)
	}
	out[TenantColumn] = tc.TenantID
	return out, nil
}

// VerifyTenantData reports whether entity belongs to the active tenant.
// A mismatch is a security violation: it is audited at HIGH severity and
// counted, and false is returned for the caller to act on.
func (m *Manager) VerifyTenantData(ctx context.Context, entity shared.TenantOwned) (bool, error) {
	tc, err := m.Current(ctx)
	if err != nil {
		return false, err
	}
	if isNil(entity) {
		return false, fmt.Errorf("%w: entity is nil", shared.ErrInvalidInput)
	}

	if entity.GetTenantID() == tc.TenantID {
		return true, nil
	}

	m.audit.Record(ctx, AuditCrossTenantAccess, SeverityHigh,
		zap.String("tenant_id", tc.TenantID),
		zap.String("entity_tenant_id", entity.GetTenantID()),
		zap.String("ip", tc.IP),
		zap.String("user_agent", tc.UserAgent),
	)
	m.metrics.TenantViolation(ctx, tc.TenantID)
	return false, nil
}

// isNil also catches a nil pointer stored in a non-nil interface
func isNil(entity shared.TenantOwned) bool {
	if entity == nil {
		return true
	}
	v := reflect.ValueOf(entity)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
