package customer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates customer with valid input", func(t *testing.T) {
		c, err := NewCustomer("t1", "cus001", "Acme Corp", "buyer@acme.io")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, c.ID)
		assert.Equal(t, "t1", c.TenantID)
		assert.Equal(t, "CUS001", c.Code)
		assert.Equal(t, "Acme Corp", c.Name)
		assert.Equal(t, 1, c.GetVersion())

		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeCustomerCreated, events[0].Type())
		assert.Equal(t, ContextName, events[0].SourceContext())
		assert.Equal(t, c.ID.String(), events[0].String("customerId"))
		assert.Equal(t, "CUS001", events[0].String("code"))
		assert.Equal(t, "Acme Corp", events[0].String("name"))
		assert.Equal(t, "t1", events[0].String("tenantId"))
	})

	t.Run("email is optional", func(t *testing.T) {
		c, err := NewCustomer("t1", "CUS002", "No Mail", "")
		require.NoError(t, err)
		assert.Empty(t, c.Email)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewCustomer("t1", "", "Acme", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewCustomer("t1", "CUS003", "", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		_, err = NewCustomer("t1", "CUS003", "Acme", "not-an-email")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email format")
	})
}

func TestCustomer_Rename(t *testing.T) {
	c, err := NewCustomer("t1", "CUS001", "Acme", "")
	require.NoError(t, err)

	require.NoError(t, c.Rename("Acme Holdings"))
	assert.Equal(t, "Acme Holdings", c.Name)
	assert.Equal(t, 2, c.GetVersion())

	assert.Error(t, c.Rename(""))
	assert.Equal(t, "Acme Holdings", c.Name)
}
