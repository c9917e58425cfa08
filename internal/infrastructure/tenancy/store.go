package tenancy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qms/backend/internal/domain/shared"
)

// Tenant is the persisted record of a known tenant
type Tenant struct {
	ID        string
	CreatedAt time.Time
}

// TenantStore records which tenants exist
type TenantStore interface {
	// Ensure creates the tenant if it does not exist and reports whether it did
	Ensure(ctx context.Context, tenantID string) (created bool, err error)
	// Get returns the tenant or a NOT_FOUND DomainError
	Get(ctx context.Context, tenantID string) (Tenant, error)
}

// MemoryTenantStore keeps tenants in process memory
type MemoryTenantStore struct {
	mu      sync.RWMutex
	tenants map[string]Tenant
	clock   func() time.Time
}

// NewMemoryTenantStore creates an empty in-memory tenant store
func NewMemoryTenantStore() *MemoryTenantStore {
	return &MemoryTenantStore{
		tenants: make(map[string]Tenant),
		clock:   time.Now,
	}
}

// Ensure implements TenantStore
func (s *MemoryTenantStore) Ensure(ctx context.Context, tenantID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[tenantID]; exists {
		return false, nil
	}
	s.tenants[tenantID] = Tenant{ID: tenantID, CreatedAt: s.clock()}
	return true, nil
}

// Get implements TenantStore
func (s *MemoryTenantStore) Get(ctx context.Context, tenantID string) (Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tenants[tenantID]
	if !exists {
		return Tenant{}, fmt.Errorf("%w: tenant '%s'", shared.ErrNotFound, tenantID)
	}
	return t, nil
}

// Len returns the number of known tenants
func (s *MemoryTenantStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants)
}

var _ TenantStore = (*MemoryTenantStore)(nil)
