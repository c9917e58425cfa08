package persistence

import (
	"context"
	"strings"

	"github.com/qms/backend/internal/domain/supplier"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"gorm.io/gorm"
)

// GormSupplierRepository implements supplier.SupplierRepository using GORM
type GormSupplierRepository struct {
	*TenantRepository[supplier.Supplier, *supplier.Supplier]
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB, manager *tenancy.Manager) *GormSupplierRepository {
	return &GormSupplierRepository{
		TenantRepository: NewTenantRepository[supplier.Supplier](db, manager, "supplier", SupplierSortFields),
	}
}

// FindByCode finds a supplier by its code
func (r *GormSupplierRepository) FindByCode(ctx context.Context, code string) (*supplier.Supplier, error) {
	return r.FindOne(ctx, tenancy.Query{"code": strings.ToUpper(strings.TrimSpace(code))})
}

var _ supplier.SupplierRepository = (*GormSupplierRepository)(nil)
