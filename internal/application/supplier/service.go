// Package supplier implements the supplier context's application service.
package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/supplier"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/registry"
	"go.uber.org/zap"
)

// ServiceName is the registry name of the supplier service
const ServiceName = "supplier.service"

// Service is the supplier context's public contract
type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error)
	List(ctx context.Context, q SupplierListQuery) (common.Page[SupplierResponse], error)
	Block(ctx context.Context, id uuid.UUID, req BlockSupplierRequest) (*SupplierResponse, error)
	Unblock(ctx context.Context, id uuid.UUID) (*SupplierResponse, error)
	RecordQualityIssue(ctx context.Context, id uuid.UUID, req RecordQualityIssueRequest) (*SupplierResponse, error)
}

// SupplierService implements Service
type SupplierService struct {
	repo      supplier.SupplierRepository
	publisher *event.AggregatePublisher
	logger    *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(repo supplier.SupplierRepository, publisher *event.AggregatePublisher, logger *zap.Logger) *SupplierService {
	return &SupplierService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("supplier"),
	}
}

// Register binds svc in r under ServiceName
func Register(r *registry.ServiceRegistry, svc Service) error {
	return registry.Register[Service](r, ServiceName, svc)
}

// Create creates a supplier in the active tenant and publishes SupplierCreated
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	tenantID, err := common.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}

	sup, err := supplier.NewSupplier(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByCode(ctx, sup.Code)
	switch {
	case err == nil:
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Supplier with code %s already exists", sup.Code))
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if err := s.publisher.ValidateEvents(ctx, sup); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	s.publisher.PublishCommitted(ctx, sup)

	s.logger.Info("supplier created",
		zap.String("supplier_id", sup.ID.String()),
		zap.String("code", sup.Code),
		zap.String("tenant_id", tenantID),
	)
	return respond(sup), nil
}

// GetByID returns a supplier of the active tenant
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return respond(sup), nil
}

// List returns a page of suppliers of the active tenant
func (s *SupplierService) List(ctx context.Context, q SupplierListQuery) (common.Page[SupplierResponse], error) {
	filter := q.Filter(map[string]any{"code": q.Code, "status": q.Status})

	suppliers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return common.Page[SupplierResponse]{}, err
	}
	total, err := s.repo.Count(ctx, filter.Conditions)
	if err != nil {
		return common.Page[SupplierResponse]{}, err
	}

	items := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		items = append(items, ToSupplierResponse(&suppliers[i]))
	}
	return common.NewPage(items, total, filter), nil
}

// Block blocks a supplier manually and publishes SupplierBlocked
func (s *SupplierService) Block(ctx context.Context, id uuid.UUID, req BlockSupplierRequest) (*SupplierResponse, error) {
	return s.mutate(ctx, id, func(sup *supplier.Supplier) error {
		return sup.Block(req.Reason)
	})
}

// Unblock reactivates a blocked supplier
func (s *SupplierService) Unblock(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	return s.mutate(ctx, id, func(sup *supplier.Supplier) error {
		return sup.Unblock()
	})
}

// RecordQualityIssue counts a quality issue against a supplier. The supplier
// is blocked and SupplierBlocked published once the issue limit is reached.
func (s *SupplierService) RecordQualityIssue(ctx context.Context, id uuid.UUID, req RecordQualityIssueRequest) (*SupplierResponse, error) {
	return s.mutate(ctx, id, func(sup *supplier.Supplier) error {
		if sup.RecordQualityIssue(req.Reason) {
			s.logger.Warn("supplier blocked after repeated quality issues",
				zap.String("supplier_id", sup.ID.String()),
				zap.Int("quality_issues", sup.QualityIssues),
			)
		}
		return nil
	})
}

func (s *SupplierService) mutate(ctx context.Context, id uuid.UUID, change func(*supplier.Supplier) error) (*SupplierResponse, error) {
	if _, err := common.RequireTenant(ctx); err != nil {
		return nil, err
	}
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(sup); err != nil {
		return nil, err
	}
	if err := s.publisher.ValidateEvents(ctx, sup); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	s.publisher.PublishCommitted(ctx, sup)
	return respond(sup), nil
}

func respond(sup *supplier.Supplier) *SupplierResponse {
	resp := ToSupplierResponse(sup)
	return &resp
}

var _ Service = (*SupplierService)(nil)
