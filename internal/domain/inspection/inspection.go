// Package inspection holds the incoming-inspection bounded context's domain model.
package inspection

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContextName identifies the inspection bounded context on the event bus
const ContextName = "inspection"

// Defaults used when an inspection is scheduled for a newly registered component
const (
	DefaultSampleSize = 50
)

// DefaultAcceptableDefectRate is 2%
var DefaultAcceptableDefectRate = decimal.RequireFromString("0.02")

// Result is the outcome of an inspection
type Result string

const (
	ResultPending Result = "PENDING"
	ResultPassed  Result = "PASSED"
	ResultFailed  Result = "FAILED"
)

// Inspection is a sampling inspection of one component lot
type Inspection struct {
	shared.TenantAggregateRoot
	ComponentID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	SampleSize           int             `gorm:"not null"`
	Defects              int             `gorm:"not null;default:0"`
	DefectRate           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AcceptableDefectRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Result               Result          `gorm:"type:varchar(20);not null;default:'PENDING'"`
}

// TableName returns the table name for GORM
func (Inspection) TableName() string {
	return "inspections"
}

// NewInspection schedules a pending inspection
func NewInspection(tenantID string, componentID, supplierID uuid.UUID, sampleSize int, acceptableDefectRate decimal.Decimal) (*Inspection, error) {
	if componentID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Component ID and supplier ID are required")
	}
	if sampleSize <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sample size must be positive")
	}
	if acceptableDefectRate.IsNegative() || acceptableDefectRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Acceptable defect rate must be between 0 and 1")
	}

	return &Inspection{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(tenantID),
		ComponentID:          componentID,
		SupplierID:           supplierID,
		SampleSize:           sampleSize,
		DefectRate:           decimal.Zero,
		AcceptableDefectRate: acceptableDefectRate,
		Result:               ResultPending,
	}, nil
}

// IsPending reports whether the inspection still awaits results
func (i *Inspection) IsPending() bool {
	return i.Result == ResultPending
}

// Complete records the number of defective samples and decides the result.
// The inspection passes when the defect rate does not exceed the acceptable rate.
func (i *Inspection) Complete(defects int) error {
	if !i.IsPending() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Inspection is already %s", i.Result))
	}
	if defects < 0 || defects > i.SampleSize {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Defects must be between 0 and %d", i.SampleSize))
	}

	i.Defects = defects
	i.DefectRate = decimal.NewFromInt(int64(defects)).
		Div(decimal.NewFromInt(int64(i.SampleSize))).
		Round(4)
	if i.DefectRate.GreaterThan(i.AcceptableDefectRate) {
		i.Result = ResultFailed
	} else {
		i.Result = ResultPassed
	}
	i.Touch()
	i.IncrementVersion()

	i.AddDomainEvent(NewInspectionCompletedEvent(i))
	if i.Result == ResultFailed {
		i.AddDomainEvent(NewInspectionFailedEvent(i))
	}
	return nil
}
