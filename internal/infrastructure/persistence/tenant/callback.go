package tenant

import (
	"context"
	"fmt"
	"reflect"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// CreateGuard checks inserted rows against the tenant in the statement context.
// Rows with an empty tenant column are stamped with the context tenant; rows
// owned by another tenant fail the insert with shared.ErrForbidden.
type CreateGuard struct {
	required bool
}

// NewCreateGuard creates a guard. When required is set an insert of a
// tenant-owned model without a tenant context fails with shared.ErrNoTenantContext.
func NewCreateGuard(required bool) *CreateGuard {
	return &CreateGuard{required: required}
}

// Register installs the guard before gorm:create
func (g *CreateGuard) Register(db *gorm.DB) error {
	return db.Callback().Create().Before("gorm:create").Register("tenant:before_create", g.beforeCreate)
}

func (g *CreateGuard) beforeCreate(db *gorm.DB) {
	if db.Statement.Schema == nil || db.Statement.Context == nil {
		return
	}
	field := db.Statement.Schema.LookUpField(tenancy.TenantColumn)
	if field == nil {
		return
	}

	ctx := db.Statement.Context
	tenantID := tenancy.TenantID(ctx)
	if tenantID == "" {
		if g.required {
			_ = db.AddError(shared.ErrNoTenantContext)
		}
		return
	}

	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := stampTenant(ctx, field, reflect.Indirect(rv.Index(i)), tenantID); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	case reflect.Struct:
		if err := stampTenant(ctx, field, rv, tenantID); err != nil {
			_ = db.AddError(err)
		}
	}
}

func stampTenant(ctx context.Context, field *schema.Field, row reflect.Value, tenantID string) error {
	value, zero := field.ValueOf(ctx, row)
	if zero {
		return field.Set(ctx, row, tenantID)
	}
	if owner := fmt.Sprint(value); owner != tenantID {
		return fmt.Errorf("%w: row belongs to tenant %q, context tenant is %q", shared.ErrForbidden, owner, tenantID)
	}
	return nil
}
