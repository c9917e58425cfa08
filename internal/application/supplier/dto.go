package supplier

import (
	"time"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/supplier"
)

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// BlockSupplierRequest represents a request to block a supplier
type BlockSupplierRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RecordQualityIssueRequest represents a quality issue reported against a supplier
type RecordQualityIssueRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SupplierListQuery filters a supplier listing
type SupplierListQuery struct {
	common.ListQuery
	Code   string `form:"code" binding:"omitempty,max=50"`
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE BLOCKED"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	TenantID      string    `json:"tenantId"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	QualityIssues int       `json:"qualityIssues"`
	BlockReason   string    `json:"blockReason,omitempty"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *supplier.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		TenantID:      s.TenantID,
		Code:          s.Code,
		Name:          s.Name,
		Status:        string(s.Status),
		QualityIssues: s.QualityIssues,
		BlockReason:   s.BlockReason,
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
