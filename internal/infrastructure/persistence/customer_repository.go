package persistence

import (
	"context"
	"strings"

	"github.com/qms/backend/internal/domain/customer"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"gorm.io/gorm"
)

// GormCustomerRepository implements customer.CustomerRepository using GORM
type GormCustomerRepository struct {
	*TenantRepository[customer.Customer, *customer.Customer]
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB, manager *tenancy.Manager) *GormCustomerRepository {
	return &GormCustomerRepository{
		TenantRepository: NewTenantRepository[customer.Customer](db, manager, "customer", CustomerSortFields),
	}
}

// FindByCode finds a customer by its code
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*customer.Customer, error) {
	return r.FindOne(ctx, tenancy.Query{"code": strings.ToUpper(strings.TrimSpace(code))})
}

var _ customer.CustomerRepository = (*GormCustomerRepository)(nil)
