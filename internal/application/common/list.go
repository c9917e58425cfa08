// Package common holds request and response shapes shared by the application services.
package common

import (
	"context"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/tenancy"
)

// MaxPageSize caps the page size a caller may request
const MaxPageSize = 100

// ListQuery is the paging and ordering part of a list request
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,max=50"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// Filter converts q into a repository filter with the given equality conditions.
// Empty string conditions are dropped.
func (q ListQuery) Filter(conditions map[string]any) shared.Filter {
	f := shared.DefaultFilter()
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = min(q.PageSize, MaxPageSize)
	}
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		f.OrderDir = q.OrderDir
	}
	for k, v := range conditions {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		f.Conditions[k] = v
	}
	return f
}

// Page is one page of a list result
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// NewPage builds a page for f
func NewPage[T any](items []T, total int64, f shared.Filter) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}
}

// RequireTenant returns the active tenant of ctx or shared.ErrNoTenantContext
func RequireTenant(ctx context.Context) (string, error) {
	id := tenancy.TenantID(ctx)
	if id == "" {
		return "", shared.ErrNoTenantContext
	}
	return id, nil
}
