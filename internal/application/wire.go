// Package application wires the bounded-context services onto the shared
// runtime: their repositories, event schemas, registry bindings and event
// subscriptions.
package application

import (
	"fmt"

	componentapp "github.com/qms/backend/internal/application/component"
	customerapp "github.com/qms/backend/internal/application/customer"
	inspectionapp "github.com/qms/backend/internal/application/inspection"
	supplierapp "github.com/qms/backend/internal/application/supplier"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/persistence"
	"github.com/qms/backend/internal/infrastructure/registry"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Runtime is the shared infrastructure the contexts are wired onto
type Runtime struct {
	DB       *gorm.DB
	Tenants  *tenancy.Manager
	Bus      *event.DomainEventBus
	Services *registry.ServiceRegistry
	Logger   *zap.Logger
}

// Contexts holds the wired application services
type Contexts struct {
	Customers   *customerapp.CustomerService
	Suppliers   *supplierapp.SupplierService
	Components  *componentapp.ComponentService
	Inspections *inspectionapp.InspectionService
}

// Wire registers every context's event schemas, builds its service, binds the
// service in the registry and subscribes it to the events of other contexts.
// Services reach each other only through registry handles and the bus.
func Wire(rt Runtime) (*Contexts, error) {
	schemas := []func(*event.DomainEventBus) error{
		customerapp.RegisterSchemas,
		supplierapp.RegisterSchemas,
		componentapp.RegisterSchemas,
		inspectionapp.RegisterSchemas,
	}
	for _, register := range schemas {
		if err := register(rt.Bus); err != nil {
			return nil, fmt.Errorf("register event schemas: %w", err)
		}
	}

	publisher := event.NewAggregatePublisher(rt.Bus, rt.Logger)
	c := &Contexts{
		Customers: customerapp.NewCustomerService(
			persistence.NewGormCustomerRepository(rt.DB, rt.Tenants),
			publisher, rt.Logger,
		),
		Suppliers: supplierapp.NewSupplierService(
			persistence.NewGormSupplierRepository(rt.DB, rt.Tenants),
			publisher, rt.Logger,
		),
		Components: componentapp.NewComponentService(
			persistence.NewGormComponentRepository(rt.DB, rt.Tenants),
			registry.NewHandle[supplierapp.Service](rt.Services, supplierapp.ServiceName),
			publisher, rt.Logger,
		),
		Inspections: inspectionapp.NewInspectionService(
			persistence.NewGormInspectionRepository(rt.DB, rt.Tenants),
			registry.NewHandle[componentapp.Service](rt.Services, componentapp.ServiceName),
			publisher, rt.Logger,
		),
	}

	if err := customerapp.Register(rt.Services, c.Customers); err != nil {
		return nil, err
	}
	if err := supplierapp.Register(rt.Services, c.Suppliers); err != nil {
		return nil, err
	}
	if err := componentapp.Register(rt.Services, c.Components); err != nil {
		return nil, err
	}
	if err := inspectionapp.Register(rt.Services, c.Inspections); err != nil {
		return nil, err
	}

	supplierapp.Subscribe(rt.Bus, c.Suppliers)
	inspectionapp.Subscribe(rt.Bus, c.Inspections)
	return c, nil
}
