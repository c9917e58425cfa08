package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the base interface for tenant-scoped aggregate repositories.
// The tenant is never passed explicitly: it is read from the request context.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindAll(ctx context.Context, filter Filter) ([]T, error)
	Count(ctx context.Context, conditions map[string]any) (int64, error)
}

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	// Conditions are column equality filters; tenant isolation is merged in by the repository
	Conditions map[string]any
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:       1,
		PageSize:   20,
		OrderBy:    "created_at",
		OrderDir:   "desc",
		Conditions: make(map[string]any),
	}
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
