// Package inspection implements the incoming-inspection context's application service.
package inspection

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	componentapp "github.com/qms/backend/internal/application/component"
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/registry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceName is the registry name of the inspection service
const ServiceName = "inspection.service"

// Service is the inspection context's public contract
type Service interface {
	Schedule(ctx context.Context, req ScheduleInspectionRequest) (*InspectionResponse, error)
	Complete(ctx context.Context, id uuid.UUID, req CompleteInspectionRequest) (*InspectionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*InspectionResponse, error)
	List(ctx context.Context, q InspectionListQuery) (common.Page[InspectionResponse], error)
}

// InspectionService implements Service
type InspectionService struct {
	repo       inspection.InspectionRepository
	components *registry.Handle[componentapp.Service]
	publisher  *event.AggregatePublisher
	logger     *zap.Logger
}

// NewInspectionService creates a new InspectionService
func NewInspectionService(
	repo inspection.InspectionRepository,
	components *registry.Handle[componentapp.Service],
	publisher *event.AggregatePublisher,
	logger *zap.Logger,
) *InspectionService {
	return &InspectionService{
		repo:       repo,
		components: components,
		publisher:  publisher,
		logger:     logger.Named("inspection"),
	}
}

// Register binds svc in r under ServiceName
func Register(r *registry.ServiceRegistry, svc Service) error {
	return registry.Register[Service](r, ServiceName, svc)
}

// Schedule creates a pending inspection for a component of the active tenant
func (s *InspectionService) Schedule(ctx context.Context, req ScheduleInspectionRequest) (*InspectionResponse, error) {
	if _, err := common.RequireTenant(ctx); err != nil {
		return nil, err
	}

	components, err := s.components.Get()
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", s.components.Name(), err)
	}
	c, err := components.GetByID(ctx, req.ComponentID)
	if err != nil {
		return nil, err
	}

	sampleSize := req.SampleSize
	if sampleSize == 0 {
		sampleSize = inspection.DefaultSampleSize
	}
	rate := inspection.DefaultAcceptableDefectRate
	if req.AcceptableDefectRate != nil {
		rate = *req.AcceptableDefectRate
	}
	return s.schedule(ctx, c.ID, c.SupplierID, sampleSize, rate)
}

func (s *InspectionService) schedule(ctx context.Context, componentID, supplierID uuid.UUID, sampleSize int, rate decimal.Decimal) (*InspectionResponse, error) {
	tenantID, err := common.RequireTenant(ctx)
	if err != nil {
		return nil, err
	}
	insp, err := inspection.NewInspection(tenantID, componentID, supplierID, sampleSize, rate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, insp); err != nil {
		return nil, err
	}

	s.logger.Info("inspection scheduled",
		zap.String("inspection_id", insp.ID.String()),
		zap.String("component_id", componentID.String()),
		zap.Int("sample_size", sampleSize),
		zap.String("tenant_id", tenantID),
	)
	return respond(insp), nil
}

// Complete records the findings of a pending inspection and publishes
// InspectionCompleted, plus InspectionFailed when the lot is rejected
func (s *InspectionService) Complete(ctx context.Context, id uuid.UUID, req CompleteInspectionRequest) (*InspectionResponse, error) {
	if _, err := common.RequireTenant(ctx); err != nil {
		return nil, err
	}
	insp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := insp.Complete(req.Defects); err != nil {
		return nil, err
	}
	if err := s.publisher.ValidateEvents(ctx, insp); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, insp); err != nil {
		return nil, err
	}
	s.publisher.PublishCommitted(ctx, insp)

	s.logger.Info("inspection completed",
		zap.String("inspection_id", insp.ID.String()),
		zap.String("result", string(insp.Result)),
		zap.String("defect_rate", insp.DefectRate.String()),
	)
	return respond(insp), nil
}

// GetByID returns an inspection of the active tenant
func (s *InspectionService) GetByID(ctx context.Context, id uuid.UUID) (*InspectionResponse, error) {
	insp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return respond(insp), nil
}

// List returns a page of inspections of the active tenant
func (s *InspectionService) List(ctx context.Context, q InspectionListQuery) (common.Page[InspectionResponse], error) {
	filter := q.Filter(map[string]any{
		"component_id": q.ComponentID,
		"supplier_id":  q.SupplierID,
		"result":       q.Result,
	})

	inspections, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return common.Page[InspectionResponse]{}, err
	}
	total, err := s.repo.Count(ctx, filter.Conditions)
	if err != nil {
		return common.Page[InspectionResponse]{}, err
	}

	items := make([]InspectionResponse, 0, len(inspections))
	for i := range inspections {
		items = append(items, ToInspectionResponse(&inspections[i]))
	}
	return common.NewPage(items, total, filter), nil
}

func respond(i *inspection.Inspection) *InspectionResponse {
	resp := ToInspectionResponse(i)
	return &resp
}

var _ Service = (*InspectionService)(nil)
