package inspection

import (
	"fmt"

	"github.com/qms/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeInspectionCompleted = "InspectionCompleted"
	EventTypeInspectionFailed    = "InspectionFailed"
)

// NewInspectionCompletedEvent creates an InspectionCompleted event for i
func NewInspectionCompletedEvent(i *Inspection) shared.DomainEvent {
	return shared.NewDomainEvent(EventTypeInspectionCompleted, ContextName, shared.Payload{
		"inspectionId": i.ID.String(),
		"componentId":  i.ComponentID.String(),
		"supplierId":   i.SupplierID.String(),
		"result":       string(i.Result),
		"sampleSize":   i.SampleSize,
		"defects":      i.Defects,
		"defectRate":   i.DefectRate.String(),
		"tenantId":     i.TenantID,
	})
}

// NewInspectionFailedEvent creates an InspectionFailed event for i
func NewInspectionFailedEvent(i *Inspection) shared.DomainEvent {
	return shared.NewDomainEvent(EventTypeInspectionFailed, ContextName, shared.Payload{
		"inspectionId": i.ID.String(),
		"componentId":  i.ComponentID.String(),
		"supplierId":   i.SupplierID.String(),
		"defectRate":   i.DefectRate.String(),
		"reason": fmt.Sprintf("defect rate %s exceeds acceptable %s",
			i.DefectRate.String(), i.AcceptableDefectRate.String()),
		"tenantId": i.TenantID,
	})
}
