package persistence

import (
	"fmt"

	"github.com/qms/backend/internal/domain/component"
	"github.com/qms/backend/internal/domain/customer"
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/qms/backend/internal/domain/supplier"
	"gorm.io/gorm"
)

// Models lists every aggregate table
func Models() []any {
	return []any{
		&customer.Customer{},
		&supplier.Supplier{},
		&component.Component{},
		&inspection.Inspection{},
	}
}

// business keys unique per tenant
var tenantUniqueIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_customer_tenant_code ON customers (tenant_id, code)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_supplier_tenant_code ON suppliers (tenant_id, code)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_component_tenant_part ON components (tenant_id, part_number)",
}

// AutoMigrate creates the schema from the GORM models. It backs the sqlite
// driver and tests; postgres deployments use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range tenantUniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}
