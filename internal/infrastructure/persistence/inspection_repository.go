package persistence

import (
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"gorm.io/gorm"
)

// GormInspectionRepository implements inspection.InspectionRepository using GORM
type GormInspectionRepository struct {
	*TenantRepository[inspection.Inspection, *inspection.Inspection]
}

// NewGormInspectionRepository creates a new GormInspectionRepository
func NewGormInspectionRepository(db *gorm.DB, manager *tenancy.Manager) *GormInspectionRepository {
	return &GormInspectionRepository{
		TenantRepository: NewTenantRepository[inspection.Inspection](db, manager, "inspection", InspectionSortFields),
	}
}

var _ inspection.InspectionRepository = (*GormInspectionRepository)(nil)
