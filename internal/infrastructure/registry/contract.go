package registry

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/qms/backend/internal/domain/shared"
)

// Contract is the method set an implementation must expose to be bound to a service name.
// A contract built from a Go interface also checks method signatures; one built from
// a plain name list checks names only.
type Contract struct {
	name    string
	methods []string
	iface   reflect.Type
}

// NewContract builds a contract from an explicit list of method names
func NewContract(name string, methods ...string) Contract {
	m := slices.Clone(methods)
	sort.Strings(m)
	return Contract{name: name, methods: slices.Compact(m)}
}

// ContractFor builds a contract from the interface type T.
// It panics if T is not an interface type.
func ContractFor[T any]() Contract {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("registry: ContractFor requires an interface type, got %s", t))
	}

	methods := make([]string, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		methods = append(methods, t.Method(i).Name)
	}
	sort.Strings(methods)
	return Contract{name: t.String(), methods: methods, iface: t}
}

// Name returns the descriptive name of the contract
func (c Contract) Name() string {
	return c.name
}

// Methods returns the required method names in sorted order
func (c Contract) Methods() []string {
	return slices.Clone(c.methods)
}

// Missing returns the required methods impl lacks, or whose signature differs
// from the contract's interface. A nil impl lacks every method.
func (c Contract) Missing(impl any) []string {
	if impl == nil {
		return c.Methods()
	}
	t := reflect.TypeOf(impl)

	var missing []string
	for _, name := range c.methods {
		m, ok := t.MethodByName(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		if c.iface != nil {
			want, _ := c.iface.MethodByName(name)
			if !sameSignature(want.Type, m.Type) {
				missing = append(missing, name)
			}
		}
	}
	return missing
}

// sameSignature compares an interface method type with a concrete method type,
// whose first parameter is the receiver.
func sameSignature(iface, concrete reflect.Type) bool {
	if iface.NumIn() != concrete.NumIn()-1 || iface.NumOut() != concrete.NumOut() {
		return false
	}
	if iface.IsVariadic() != concrete.IsVariadic() {
		return false
	}
	for i := 0; i < iface.NumIn(); i++ {
		if iface.In(i) != concrete.In(i+1) {
			return false
		}
	}
	for i := 0; i < iface.NumOut(); i++ {
		if iface.Out(i) != concrete.Out(i) {
			return false
		}
	}
	return true
}

// ContractViolationError reports the methods an implementation is missing
type ContractViolationError struct {
	Service        string
	Implementation string
	Missing        []string
}

// Error implements the error interface
func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("implementation %s of service %q does not satisfy the interface: missing methods [%s]",
		e.Implementation, e.Service, strings.Join(e.Missing, ", "))
}

// Unwrap lets errors.Is match shared.ErrContractViolation
func (e *ContractViolationError) Unwrap() error {
	return shared.ErrContractViolation
}
