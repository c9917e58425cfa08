package component

import (
	"github.com/qms/backend/internal/domain/component"
	"github.com/qms/backend/internal/infrastructure/event"
)

// ComponentRegisteredSchema describes the ComponentRegistered payload
var ComponentRegisteredSchema = event.Schema{
	Type:           component.EventTypeComponentRegistered,
	RequiredFields: []string{"componentId", "partNumber", "supplierId", "tenantId"},
	Properties: map[string]event.PropertyType{
		"componentId": event.TypeString,
		"partNumber":  event.TypeString,
		"name":        event.TypeString,
		"supplierId":  event.TypeString,
		"unitCost":    event.TypeString,
		"tenantId":    event.TypeString,
	},
}

// RegisterSchemas registers the schemas of the events this context publishes
func RegisterSchemas(bus *event.DomainEventBus) error {
	return bus.RegisterEventSchema(component.EventTypeComponentRegistered, ComponentRegisteredSchema)
}
