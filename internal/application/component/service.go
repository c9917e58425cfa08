// Package component implements the component context's application service.
package component

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	supplierapp "github.com/qms/backend/internal/application/supplier"
	"github.com/qms/backend/internal/domain/component"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/supplier"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/registry"
	"go.uber.org/zap"
)

// ServiceName is the registry name of the component service
const ServiceName = "component.service"

// Service is the component context's public contract
type Service interface {
	Register(ctx context.Context, req RegisterComponentRequest) (*ComponentResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ComponentResponse, error)
	List(ctx context.Context, q ComponentListQuery) (common.Page[ComponentResponse], error)
}

// ComponentService implements Service. Suppliers are looked up through the
// service registry rather than the supplier repository.
type ComponentService struct {
	repo      component.ComponentRepository
	suppliers *registry.Handle[supplierapp.Service]
	publisher *event.AggregatePublisher
	logger    *zap.Logger
}

// NewComponentService creates a new ComponentService
func NewComponentService(
	repo component.ComponentRepository,
	suppliers *registry.Handle[supplierapp.Service],
	publisher *event.AggregatePublisher,
	logger *zap.Logger,
) *ComponentService {
	return &ComponentService{
		repo:      repo,
		suppliers: suppliers,
		publisher: publisher,
		logger:    logger.Named("component"),
	}
}

// Register binds svc in r under ServiceName
func Register(r *registry.ServiceRegistry, svc Service) error {
	return registry.Register[Service](r, ServiceName, svc)
}

// Register registers a component of an active supplier and publishes ComponentRegistered
func (s *ComponentService) Register(ctx context.Context, req RegisterComponentRequest) (*ComponentResponse, error) {
	tenantID, err := common.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	suppliers, err := s.suppliers.Get()
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", s.suppliers.Name(), err)
	}
	sup, err := suppliers.GetByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if sup.Status != string(supplier.SupplierStatusActive) {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Supplier %s is %s and cannot supply new components", sup.Code, sup.Status))
	}

	c, err := component.NewComponent(tenantID, req.PartNumber, req.Name, req.SupplierID, req.UnitCost)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByPartNumber(ctx, c.PartNumber)
	switch {
	case err == nil:
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Component with part number %s already exists", c.PartNumber))
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if err := s.publisher.ValidateEvents(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.publisher.PublishCommitted(ctx, c)

	s.logger.Info("component registered",
		zap.String("component_id", c.ID.String()),
		zap.String("part_number", c.PartNumber),
		zap.String("supplier_id", c.SupplierID.String()),
		zap.String("tenant_id", tenantID),
	)
	resp := ToComponentResponse(c)
	return &resp, nil
}

// GetByID returns a component of the active tenant
func (s *ComponentService) GetByID(ctx context.Context, id uuid.UUID) (*ComponentResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToComponentResponse(c)
	return &resp, nil
}

// List returns a page of components of the active tenant
func (s *ComponentService) List(ctx context.Context, q ComponentListQuery) (common.Page[ComponentResponse], error) {
	filter := q.Filter(map[string]any{"part_number": q.PartNumber, "supplier_id": q.SupplierID})

	components, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return common.Page[ComponentResponse]{}, err
	}
	total, err := s.repo.Count(ctx, filter.Conditions)
	if err != nil {
		return common.Page[ComponentResponse]{}, err
	}

	items := make([]ComponentResponse, 0, len(components))
	for i := range components {
		items = append(items, ToComponentResponse(&components[i]))
	}
	return common.NewPage(items, total, filter), nil
}

var _ Service = (*ComponentService)(nil)
