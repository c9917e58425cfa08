// Package registry binds service names to swappable implementations and checks
// every implementation against the contract registered for its name.
package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/qms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ServiceRegistry maps service names to a contract and the currently bound implementation
type ServiceRegistry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
	impls     map[string]any
	logger    *zap.Logger
}

// NewServiceRegistry creates an empty service registry
func NewServiceRegistry(logger *zap.Logger) *ServiceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceRegistry{
		contracts: make(map[string]Contract),
		impls:     make(map[string]any),
		logger:    logger,
	}
}

// RegisterInterface registers the contract for name. Each name may be registered once.
func (r *ServiceRegistry) RegisterInterface(name string, contract Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contracts[name]; exists {
		return fmt.Errorf("%w: service interface '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.contracts[name] = contract

	r.logger.Debug("service interface registered",
		zap.String("service", name),
		zap.Strings("methods", contract.methods),
	)
	return nil
}

// RegisterImplementation binds impl to name after checking it against the contract.
// A later binding replaces an earlier one.
func (r *ServiceRegistry) RegisterImplementation(name string, impl any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contract, exists := r.contracts[name]
	if !exists {
		return fmt.Errorf("%w: service interface '%s' not registered", shared.ErrNotFound, name)
	}

	if missing := contract.Missing(impl); len(missing) > 0 {
		err := &ContractViolationError{
			Service:        name,
			Implementation: typeName(impl),
			Missing:        missing,
		}
		r.logger.Error("service implementation rejected",
			zap.String("service", name),
			zap.Strings("missing_methods", missing),
		)
		return err
	}

	_, replaced := r.impls[name]
	r.impls[name] = impl

	r.logger.Info("service implementation bound",
		zap.String("service", name),
		zap.String("implementation", typeName(impl)),
		zap.Bool("replaced", replaced),
	)
	return nil
}

// GetService returns the implementation currently bound to name
func (r *ServiceRegistry) GetService(name string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	impl, exists := r.impls[name]
	if !exists {
		return nil, fmt.Errorf("%w: no implementation registered for service '%s'", shared.ErrNotFound, name)
	}
	return impl, nil
}

// HasService reports whether an implementation is bound to name
func (r *ServiceRegistry) HasService(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.impls[name]
	return exists
}

// Contract returns the contract registered for name
func (r *ServiceRegistry) Contract(name string) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[name]
	return c, ok
}

// ServiceNames returns all registered service names
func (r *ServiceRegistry) ServiceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.contracts))
	for name := range r.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all contracts and bindings
func (r *ServiceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = make(map[string]Contract)
	r.impls = make(map[string]any)
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
