// Package component holds the component bounded context's domain model.
package component

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContextName identifies the component bounded context on the event bus
const ContextName = "component"

// Component is a purchased part supplied by one supplier
type Component struct {
	shared.TenantAggregateRoot
	PartNumber string          `gorm:"type:varchar(50);not null"`
	Name       string          `gorm:"type:varchar(200);not null"`
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Component) TableName() string {
	return "components"
}

// NewComponent registers a component and records ComponentRegistered
func NewComponent(tenantID, partNumber, name string, supplierID uuid.UUID, unitCost decimal.Decimal) (*Component, error) {
	partNumber, err := shared.NormalizeCode("Part number", partNumber)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateName("Component name", name); err != nil {
		return nil, err
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier ID is required")
	}
	if err := validateUnitCost(unitCost); err != nil {
		return nil, err
	}

	c := &Component{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartNumber:          partNumber,
		Name:                strings.TrimSpace(name),
		SupplierID:          supplierID,
		UnitCost:            unitCost,
	}
	c.AddDomainEvent(NewComponentRegisteredEvent(c))
	return c, nil
}

// ChangeUnitCost updates the purchase price
func (c *Component) ChangeUnitCost(unitCost decimal.Decimal) error {
	if err := validateUnitCost(unitCost); err != nil {
		return err
	}
	c.UnitCost = unitCost
	c.Touch()
	c.IncrementVersion()
	return nil
}

func validateUnitCost(unitCost decimal.Decimal) error {
	if unitCost.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unit cost cannot be negative")
	}
	return nil
}
