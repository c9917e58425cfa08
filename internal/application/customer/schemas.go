package customer

import (
	"github.com/qms/backend/internal/domain/customer"
	"github.com/qms/backend/internal/infrastructure/event"
)

// CustomerCreatedSchema describes the CustomerCreated payload
var CustomerCreatedSchema = event.Schema{
	Type:           customer.EventTypeCustomerCreated,
	RequiredFields: []string{"customerId", "name", "code", "tenantId"},
	Properties: map[string]event.PropertyType{
		"customerId": event.TypeString,
		"name":       event.TypeString,
		"code":       event.TypeString,
		"email":      event.TypeString,
		"tenantId":   event.TypeString,
	},
}

// RegisterSchemas registers the schemas of the events this context publishes
func RegisterSchemas(bus *event.DomainEventBus) error {
	return bus.RegisterEventSchema(customer.EventTypeCustomerCreated, CustomerCreatedSchema)
}
