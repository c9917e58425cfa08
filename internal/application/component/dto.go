package component

import (
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/component"
	"github.com/shopspring/decimal"
)

// RegisterComponentRequest represents a request to register a component
type RegisterComponentRequest struct {
	PartNumber string          `json:"partNumber" binding:"required,min=1,max=50"`
	Name       string          `json:"name" binding:"required,min=1,max=200"`
	SupplierID uuid.UUID       `json:"supplierId" binding:"required"`
	UnitCost   decimal.Decimal `json:"unitCost"`
}

// ComponentListQuery filters a component listing
type ComponentListQuery struct {
	common.ListQuery
	PartNumber string `form:"part_number" binding:"omitempty,max=50"`
	SupplierID string `form:"supplier_id" binding:"omitempty,uuid"`
}

// ComponentResponse represents a component in API responses
type ComponentResponse struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   string          `json:"tenantId"`
	PartNumber string          `json:"partNumber"`
	Name       string          `json:"name"`
	SupplierID uuid.UUID       `json:"supplierId"`
	UnitCost   decimal.Decimal `json:"unitCost"`
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ToComponentResponse converts a domain Component to ComponentResponse
func ToComponentResponse(c *component.Component) ComponentResponse {
	return ComponentResponse{
		ID:         c.ID,
		TenantID:   c.TenantID,
		PartNumber: c.PartNumber,
		Name:       c.Name,
		SupplierID: c.SupplierID,
		UnitCost:   c.UnitCost,
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
