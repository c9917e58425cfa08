package component

import (
	"context"

	"github.com/qms/backend/internal/domain/shared"
)

// ComponentRepository defines the interface for component persistence
type ComponentRepository interface {
	shared.Repository[Component]

	// FindByPartNumber finds a component by its part number
	FindByPartNumber(ctx context.Context, partNumber string) (*Component, error)
}
