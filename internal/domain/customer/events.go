package customer

import "github.com/qms/backend/internal/domain/shared"

// Event type constants
const (
	EventTypeCustomerCreated = "CustomerCreated"
)

// NewCustomerCreatedEvent creates a CustomerCreated event for c
func NewCustomerCreatedEvent(c *Customer) shared.DomainEvent {
	return shared.NewDomainEvent(EventTypeCustomerCreated, ContextName, shared.Payload{
		"customerId": c.ID.String(),
		"code":       c.Code,
		"name":       c.Name,
		"email":      c.Email,
		"tenantId":   c.TenantID,
	})
}
