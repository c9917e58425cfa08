package inspection

import (
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/shopspring/decimal"
)

// ScheduleInspectionRequest represents a request to schedule an incoming inspection.
// SampleSize and AcceptableDefectRate fall back to the context defaults when omitted.
type ScheduleInspectionRequest struct {
	ComponentID          uuid.UUID        `json:"componentId" binding:"required"`
	SampleSize           int              `json:"sampleSize" binding:"omitempty,min=1,max=100000"`
	AcceptableDefectRate *decimal.Decimal `json:"acceptableDefectRate"`
}

// CompleteInspectionRequest records the inspection findings
type CompleteInspectionRequest struct {
	Defects int `json:"defects" binding:"min=0"`
}

// InspectionListQuery filters an inspection listing
type InspectionListQuery struct {
	common.ListQuery
	ComponentID string `form:"component_id" binding:"omitempty,uuid"`
	SupplierID  string `form:"supplier_id" binding:"omitempty,uuid"`
	Result      string `form:"result" binding:"omitempty,oneof=PENDING PASSED FAILED"`
}

// InspectionResponse represents an inspection in API responses
type InspectionResponse struct {
	ID                   uuid.UUID       `json:"id"`
	TenantID             string          `json:"tenantId"`
	ComponentID          uuid.UUID       `json:"componentId"`
	SupplierID           uuid.UUID       `json:"supplierId"`
	SampleSize           int             `json:"sampleSize"`
	Defects              int             `json:"defects"`
	DefectRate           decimal.Decimal `json:"defectRate"`
	AcceptableDefectRate decimal.Decimal `json:"acceptableDefectRate"`
	Result               string          `json:"result"`
	Version              int             `json:"version"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ToInspectionResponse converts a domain Inspection to InspectionResponse
func ToInspectionResponse(i *inspection.Inspection) InspectionResponse {
	return InspectionResponse{
		ID:                   i.ID,
		TenantID:             i.TenantID,
		ComponentID:          i.ComponentID,
		SupplierID:           i.SupplierID,
		SampleSize:           i.SampleSize,
		Defects:              i.Defects,
		DefectRate:           i.DefectRate,
		AcceptableDefectRate: i.AcceptableDefectRate,
		Result:               string(i.Result),
		Version:              i.Version,
		CreatedAt:            i.CreatedAt,
		UpdatedAt:            i.UpdatedAt,
	}
}
