package registry

import (
	"fmt"

	"github.com/qms/backend/internal/domain/shared"
)

// Register binds impl to name under the contract derived from T, registering
// that contract first if name has none yet.
func Register[T any](r *ServiceRegistry, name string, impl T) error {
	if _, exists := r.Contract(name); !exists {
		if err := r.RegisterInterface(name, ContractFor[T]()); err != nil {
			return err
		}
	}
	return r.RegisterImplementation(name, impl)
}

// Resolve returns the implementation bound to name as a T
func Resolve[T any](r *ServiceRegistry, name string) (T, error) {
	var zero T
	impl, err := r.GetService(name)
	if err != nil {
		return zero, err
	}
	svc, ok := impl.(T)
	if !ok {
		return zero, fmt.Errorf("%w: service '%s' is bound to %s, not %s",
			shared.ErrContractViolation, name, typeName(impl), ContractFor[T]().Name())
	}
	return svc, nil
}

// Handle is a long-lived reference to a named service. Callers keep the handle
// and every Get resolves whatever implementation is bound at that moment, so
// rebinding a service takes effect without re-wiring its consumers.
type Handle[T any] struct {
	registry *ServiceRegistry
	name     string
}

// NewHandle returns a handle to the service registered under name
func NewHandle[T any](r *ServiceRegistry, name string) *Handle[T] {
	return &Handle[T]{registry: r, name: name}
}

// Name returns the service name
func (h *Handle[T]) Name() string {
	return h.name
}

// Get resolves the currently bound implementation
func (h *Handle[T]) Get() (T, error) {
	return Resolve[T](h.registry, h.name)
}
