// Package tenant scopes GORM access to the tenant carried by the request context.
//
// Usage:
//
//	db := tenant.NewTenantDB(gormDB)
//	db.WithContext(ctx).Find(&customers) // WHERE tenant_id = '<ctx tenant>'
package tenant

import (
	"context"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"gorm.io/gorm"
)

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(tenancy.TenantColumn+" = ?", tenantID)
	}
}

// TenantDB wraps GORM DB with automatic tenant scoping
type TenantDB struct {
	db *gorm.DB
}

// NewTenantDB creates a new TenantDB
func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db}
}

// WithContext returns a GORM DB scoped to the tenant from ctx.
// Without a tenant context the returned DB fails every operation with
// shared.ErrNoTenantContext.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	db := t.db.WithContext(ctx)
	tenantID := tenancy.TenantID(ctx)
	if tenantID == "" {
		_ = db.AddError(shared.ErrNoTenantContext)
		return db
	}
	return db.Scopes(TenantScope(tenantID))
}

// Transaction runs fn in a transaction scoped to the tenant from ctx
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tenantID := tenancy.TenantID(ctx)
	if tenantID == "" {
		return shared.ErrNoTenantContext
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx.Scopes(TenantScope(tenantID)))
	})
}

// Unscoped returns the underlying DB without any tenant scoping.
// Only migrations and system-level jobs may use it.
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}
