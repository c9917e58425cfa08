package supplier

import (
	"github.com/qms/backend/internal/domain/supplier"
	"github.com/qms/backend/internal/infrastructure/event"
)

// SupplierCreatedSchema describes the SupplierCreated payload
var SupplierCreatedSchema = event.Schema{
	Type:           supplier.EventTypeSupplierCreated,
	RequiredFields: []string{"supplierId", "code", "name", "tenantId"},
	Properties: map[string]event.PropertyType{
		"supplierId": event.TypeString,
		"code":       event.TypeString,
		"name":       event.TypeString,
		"tenantId":   event.TypeString,
	},
}

// SupplierBlockedSchema describes the SupplierBlocked payload
var SupplierBlockedSchema = event.Schema{
	Type:           supplier.EventTypeSupplierBlocked,
	RequiredFields: []string{"supplierId", "reason", "tenantId"},
	Properties: map[string]event.PropertyType{
		"supplierId":    event.TypeString,
		"code":          event.TypeString,
		"reason":        event.TypeString,
		"qualityIssues": event.TypeInteger,
		"tenantId":      event.TypeString,
	},
}

// RegisterSchemas registers the schemas of the events this context publishes
func RegisterSchemas(bus *event.DomainEventBus) error {
	for _, s := range []event.Schema{SupplierCreatedSchema, SupplierBlockedSchema} {
		if err := bus.RegisterEventSchema(s.Type, s); err != nil {
			return err
		}
	}
	return nil
}
