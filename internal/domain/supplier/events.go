package supplier

import "github.com/qms/backend/internal/domain/shared"

// Event type constants
const (
	EventTypeSupplierCreated = "SupplierCreated"
	EventTypeSupplierBlocked = "SupplierBlocked"
)

// NewSupplierCreatedEvent creates a SupplierCreated event for s
func NewSupplierCreatedEvent(s *Supplier) shared.DomainEvent {
	return shared.NewDomainEvent(EventTypeSupplierCreated, ContextName, shared.Payload{
		"supplierId": s.ID.String(),
		"code":       s.Code,
		"name":       s.Name,
		"tenantId":   s.TenantID,
	})
}

// NewSupplierBlockedEvent creates a SupplierBlocked event for s
func NewSupplierBlockedEvent(s *Supplier) shared.DomainEvent {
	return shared.NewDomainEvent(EventTypeSupplierBlocked, ContextName, shared.Payload{
		"supplierId":    s.ID.String(),
		"code":          s.Code,
		"reason":        s.BlockReason,
		"qualityIssues": s.QualityIssues,
		"tenantId":      s.TenantID,
	})
}
