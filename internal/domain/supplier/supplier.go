// Package supplier holds the supplier bounded context's domain model.
package supplier

import (
	"fmt"
	"strings"

	"github.com/qms/backend/internal/domain/shared"
)

// ContextName identifies the supplier bounded context on the event bus
const ContextName = "supplier"

// QualityIssueLimit is the number of recorded quality issues that blocks a supplier
const QualityIssueLimit = 3

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive  SupplierStatus = "ACTIVE"
	SupplierStatusBlocked SupplierStatus = "BLOCKED" // Blocked due to quality issues
)

// Supplier is the aggregate root of the supplier context
type Supplier struct {
	shared.TenantAggregateRoot
	Code          string         `gorm:"type:varchar(50);not null"`
	Name          string         `gorm:"type:varchar(200);not null"`
	Status        SupplierStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	QualityIssues int            `gorm:"not null;default:0"`
	BlockReason   string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates an active supplier and records SupplierCreated
func NewSupplier(tenantID, code, name string) (*Supplier, error) {
	code, err := shared.NormalizeCode("Supplier code", code)
	if err != nil {
		return nil, err
	}
	if err := shared.ValidateName("Supplier name", name); err != nil {
		return nil, err
	}

	s := &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		Status:              SupplierStatusActive,
	}
	s.AddDomainEvent(NewSupplierCreatedEvent(s))
	return s, nil
}

// IsBlocked reports whether the supplier may not deliver
func (s *Supplier) IsBlocked() bool {
	return s.Status == SupplierStatusBlocked
}

// RecordQualityIssue counts a failed inspection against the supplier and
// blocks it once QualityIssueLimit is reached. It returns true when this
// call blocked the supplier.
func (s *Supplier) RecordQualityIssue(reason string) bool {
	s.QualityIssues++
	s.Touch()
	s.IncrementVersion()

	if s.IsBlocked() || s.QualityIssues < QualityIssueLimit {
		return false
	}
	s.block(fmt.Sprintf("%d quality issues: %s", s.QualityIssues, reason))
	return true
}

// Block blocks the supplier manually
func (s *Supplier) Block(reason string) error {
	if s.IsBlocked() {
		return shared.NewDomainError(shared.CodeInvalidState, "Supplier is already blocked")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Block reason cannot be empty")
	}
	s.block(reason)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// Unblock reactivates a blocked supplier and resets its quality issue count
func (s *Supplier) Unblock() error {
	if !s.IsBlocked() {
		return shared.NewDomainError(shared.CodeInvalidState, "Supplier is not blocked")
	}
	s.Status = SupplierStatusActive
	s.QualityIssues = 0
	s.BlockReason = ""
	s.Touch()
	s.IncrementVersion()
	return nil
}

func (s *Supplier) block(reason string) {
	s.Status = SupplierStatusBlocked
	s.BlockReason = reason
	s.AddDomainEvent(NewSupplierBlockedEvent(s))
}
