package component

import "github.com/qms/backend/internal/domain/shared"

// EventTypeComponentRegistered is published when a new component is registered
const EventTypeComponentRegistered = "ComponentRegistered"

// NewComponentRegisteredEvent creates a ComponentRegistered event for c.
// The unit cost travels as a decimal string.
func NewComponentRegisteredEvent(c *Component) shared.DomainEvent {
	return shared.NewDomainEvent(EventTypeComponentRegistered, ContextName, shared.Payload{
		"componentId": c.ID.String(),
		"partNumber":  c.PartNumber,
		"name":        c.Name,
		"supplierId":  c.SupplierID.String(),
		"unitCost":    c.UnitCost.String(),
		"tenantId":    c.TenantID,
	})
}
