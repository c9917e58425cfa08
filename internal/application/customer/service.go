// Package customer implements the customer context's application service.
package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/customer"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/registry"
	"go.uber.org/zap"
)

// ServiceName is the registry name of the customer service
const ServiceName = "customer.service"

// Service is the customer context's public contract
type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error)
	List(ctx context.Context, q CustomerListQuery) (common.Page[CustomerResponse], error)
}

// CustomerService implements Service
type CustomerService struct {
	repo      customer.CustomerRepository
	publisher *event.AggregatePublisher
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(repo customer.CustomerRepository, publisher *event.AggregatePublisher, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("customer"),
	}
}

// Register binds svc in r under ServiceName
func Register(r *registry.ServiceRegistry, svc Service) error {
	return registry.Register[Service](r, ServiceName, svc)
}

// Create creates a customer in the active tenant and publishes CustomerCreated
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	tenantID, err := common.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	c, err := customer.NewCustomer(tenantID, req.Code, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByCode(ctx, c.Code)
	switch {
	case err == nil:
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Customer with code %s already exists", c.Code))
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

	s.logger.Info("customer created",
		zap.String("customer_id", c.ID.String()),
		zap.String("code", c.Code),
		zap.String("tenant_id", tenantID),
	)
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// GetByID returns a customer of the active tenant
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

// List returns a page of customers of the active tenant
func (s *CustomerService) List(ctx context.Context, q CustomerListQuery) (common.Page[CustomerResponse], error) {
	filter := q.Filter(map[string]any{"code": q.Code})

	customers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return common.Page[CustomerResponse]{}, err
	}
	total, err := s.repo.Count(ctx, filter.Conditions)
	if err != nil {
		return common.Page[CustomerResponse]{}, err
	}

	items := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, ToCustomerResponse(&customers[i]))
	}
	return common.NewPage(items, total, filter), nil
}

var _ Service = (*CustomerService)(nil)
