package persistence

import (
	"context"
	"strings"

	"github.com/qms/backend/internal/domain/component"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"gorm.io/gorm"
)

// GormComponentRepository implements component.ComponentRepository using GORM
type GormComponentRepository struct {
	*TenantRepository[component.Component, *component.Component]
}

// NewGormComponentRepository creates a new GormComponentRepository
func NewGormComponentRepository(db *gorm.DB, manager *tenancy.Manager) *GormComponentRepository {
	return &GormComponentRepository{
		TenantRepository: NewTenantRepository[component.Component](db, manager, "component", ComponentSortFields),
	}
}

// FindByPartNumber finds a component by its part number
func (r *GormComponentRepository) FindByPartNumber(ctx context.Context, partNumber string) (*component.Component, error) {
	return r.FindOne(ctx, tenancy.Query{"part_number": strings.ToUpper(strings.TrimSpace(partNumber))})
}

var _ component.ComponentRepository = (*GormComponentRepository)(nil)
