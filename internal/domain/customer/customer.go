// Package customer holds the customer bounded context's domain model.
package customer

import (
	"regexp"
	"strings"

	"github.com/qms/backend/internal/domain/shared"
)

// ContextName identifies the customer bounded context on the event bus
const ContextName = "customer"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Customer is the aggregate root of the customer context
type Customer struct {
	shared.TenantAggregateRoot
	Code  string `gorm:"type:varchar(50);not null"`
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200);index"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a customer and records CustomerCreated
func NewCustomer(tenantID, code, name, email string) (*Customer, error) {
	code, err := shared.NormalizeCode("Customer code", code)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateName("Customer name", name); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		Email:               email,
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Rename changes the display name
func (c *Customer) Rename(name string) error {
	if err := shared.ValidateName("Customer name", name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Touch()
	c.IncrementVersion()
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid email format")
	}
	return nil
}
