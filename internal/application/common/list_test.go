package common

import (
	"context"
	"testing"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListQuery_Filter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := ListQuery{}.Filter(nil)
		assert.Equal(t, shared.DefaultFilter().Page, f.Page)
		assert.Equal(t, shared.DefaultFilter().PageSize, f.PageSize)
		assert.Equal(t, "created_at", f.OrderBy)
		assert.Empty(t, f.Conditions)
	})

	t.Run("overrides and caps", func(t *testing.T) {
		f := ListQuery{Page: 3, PageSize: 500, OrderBy: "code", OrderDir: "asc"}.
			Filter(map[string]any{"status": "BLOCKED", "code": ""})
		assert.Equal(t, 3, f.Page)
		assert.Equal(t, MaxPageSize, f.PageSize)
		assert.Equal(t, "code", f.OrderBy)
		assert.Equal(t, "asc", f.OrderDir)
		assert.Equal(t, map[string]any{"status": "BLOCKED"}, f.Conditions)
	})
}

func TestNewPage(t *testing.T) {
	p := NewPage[string](nil, 0, shared.DefaultFilter())
	assert.NotNil(t, p.Items)
	assert.Equal(t, 1, p.Page)
}

func TestRequireTenant(t *testing.T) {
	_, err := RequireTenant(context.Background())
	assert.ErrorIs(t, err, shared.ErrNoTenantContext)

	ctx := tenancy.NewContext(context.Background(), tenancy.TenantContext{TenantID: "t1"})
	id, err := RequireTenant(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", id)
}
