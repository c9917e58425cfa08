package inspection

import (
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/qms/backend/internal/infrastructure/event"
)

// InspectionCompletedSchema describes the InspectionCompleted payload
var InspectionCompletedSchema = event.Schema{
	Type:           inspection.EventTypeInspectionCompleted,
	RequiredFields: []string{"inspectionId", "componentId", "supplierId", "result", "tenantId"},
	Properties: map[string]event.PropertyType{
		"inspectionId": event.TypeString,
		"componentId":  event.TypeString,
		"supplierId":   event.TypeString,
		"result":       event.TypeString,
		"sampleSize":   event.TypeInteger,
		"defects":      event.TypeInteger,
		"defectRate":   event.TypeString,
		"tenantId":     event.TypeString,
	},
}

// InspectionFailedSchema describes the InspectionFailed payload
var InspectionFailedSchema = event.Schema{
	Type:           inspection.EventTypeInspectionFailed,
	RequiredFields: []string{"inspectionId", "supplierId", "reason", "tenantId"},
	Properties: map[string]event.PropertyType{
		"inspectionId": event.TypeString,
		"componentId":  event.TypeString,
		"supplierId":   event.TypeString,
		"defectRate":   event.TypeString,
		"reason":       event.TypeString,
		"tenantId":     event.TypeString,
	},
}

// RegisterSchemas registers the schemas of the events this context publishes
func RegisterSchemas(bus *event.DomainEventBus) error {
	for _, s := range []event.Schema{InspectionCompletedSchema, InspectionFailedSchema} {
		if err := bus.RegisterEventSchema(s.Type, s); err != nil {
			return err
		}
	}
	return nil
}
