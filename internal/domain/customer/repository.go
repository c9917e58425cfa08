package customer

import (
	"context"

	"github.com/qms/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence.
// Every method operates on the tenant carried by ctx.
type CustomerRepository interface {
	shared.Repository[Customer]

	// FindByCode finds a customer by its code
	FindByCode(ctx context.Context, code string) (*Customer, error)
}
