package supplier

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/inspection"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/domain/supplier"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSupplierRepository is a mock implementation of supplier.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSupplierRepository) Update(ctx context.Context, s *supplier.Supplier) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]supplier.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]supplier.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Count(ctx context.Context, conditions map[string]any) (int64, error) {
	args := m.Called(ctx, conditions)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*supplier.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Supplier), args.Error(1)
}

type recorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *recorder) Handle(_ context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

var inspectionFailedSchema = event.Schema{
	Type:           inspection.EventTypeInspectionFailed,
	RequiredFields: []string{"inspectionId", "supplierId", "tenantId"},
}

func setup(t *testing.T) (*SupplierService, *MockSupplierRepository, *event.DomainEventBus, *recorder) {
	t.Helper()
	bus := event.NewDomainEventBus(zap.NewNop())
	require.NoError(t, RegisterSchemas(bus))
	require.NoError(t, bus.RegisterEventSchema(inspection.EventTypeInspectionFailed, inspectionFailedSchema))

	rec := &recorder{}
	bus.SubscribeContext(supplier.ContextName, "test", supplier.EventTypeSupplierCreated, rec)
	bus.SubscribeContext(supplier.ContextName, "test", supplier.EventTypeSupplierBlocked, rec)

	repo := new(MockSupplierRepository)
	svc := NewSupplierService(repo, event.NewAggregatePublisher(bus, zap.NewNop()), zap.NewNop())
	return svc, repo, bus, rec
}

func tenantCtx(id string) context.Context {
	return tenancy.NewContext(context.Background(), tenancy.TenantContext{TenantID: id})
}

func newSupplier(t *testing.T, tenantID string) *supplier.Supplier {
	t.Helper()
	s, err := supplier.NewSupplier(tenantID, "SUP001", "Precision Parts")
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func TestSupplierService_Create(t *testing.T) {
	svc, repo, _, rec := setup(t)
	ctx := tenantCtx("t1")

	repo.On("FindByCode", ctx, "SUP001").Return(nil, shared.ErrNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*supplier.Supplier")).Return(nil)

	resp, err := svc.Create(ctx, CreateSupplierRequest{Code: "sup001", Name: "Precision Parts"})
	require.NoError(t, err)
	assert.Equal(t, "SUP001", resp.Code)
	assert.Equal(t, "ACTIVE", resp.Status)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, supplier.EventTypeSupplierCreated, events[0].Type())
	repo.AssertExpectations(t)
}

func TestSupplierService_BlockAndUnblock(t *testing.T) {
	svc, repo, _, rec := setup(t)
	ctx := tenantCtx("t1")
	sup := newSupplier(t, "t1")

	repo.On("FindByID", ctx, sup.ID).Return(sup, nil)
	repo.On("Update", ctx, sup).Return(nil)

	resp, err := svc.Block(ctx, sup.ID, BlockSupplierRequest{Reason: "audit failed"})
	require.NoError(t, err)
	assert.Equal(t, "BLOCKED", resp.Status)
	assert.Equal(t, "audit failed", resp.BlockReason)

	_, err = svc.Block(ctx, sup.ID, BlockSupplierRequest{Reason: "again"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resp, err = svc.Unblock(ctx, sup.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, supplier.EventTypeSupplierBlocked, events[0].Type())
	assert.Equal(t, "audit failed", events[0].String("reason"))
}

func TestSupplierService_List(t *testing.T) {
	svc, repo, _, _ := setup(t)
	ctx := tenantCtx("t1")
	sup := newSupplier(t, "t1")

	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Conditions["status"] == "ACTIVE" && len(f.Conditions) == 1
	})).Return([]supplier.Supplier{*sup}, nil)
	repo.On("Count", ctx, map[string]any{"status": "ACTIVE"}).Return(int64(1), nil)

	page, err := svc.List(ctx, SupplierListQuery{Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, sup.ID, page.Items[0].ID)
}

func TestSupplierService_HandleInspectionFailed(t *testing.T) {
	svc, repo, bus, rec := setup(t)
	Subscribe(bus, svc)

	sup := newSupplier(t, "t1")
	repo.On("FindByID", mock.Anything, sup.ID).Return(sup, nil)
	repo.On("Update", mock.Anything, sup).Return(nil)

	ctx := tenantCtx("t1")
	for i := 0; i < supplier.QualityIssueLimit; i++ {
		err := bus.PublishFromContext(ctx, inspection.ContextName,
			shared.NewDomainEvent(inspection.EventTypeInspectionFailed, inspection.ContextName, shared.Payload{
				"inspectionId": uuid.NewString(),
				"supplierId":   sup.ID.String(),
				"reason":       "defect rate 0.06 exceeds acceptable 0.02",
				"tenantId":     "t1",
			}))
		require.NoError(t, err)
	}

	assert.True(t, sup.IsBlocked())
	assert.Equal(t, supplier.QualityIssueLimit, sup.QualityIssues)
	assert.Contains(t, sup.BlockReason, "3 quality issues")

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, supplier.EventTypeSupplierBlocked, events[0].Type())
	assert.Equal(t, sup.ID.String(), events[0].String("supplierId"))
	repo.AssertNumberOfCalls(t, "Update", supplier.QualityIssueLimit)
}

func TestSupplierService_HandleInspectionFailed_TenantFromEvent(t *testing.T) {
	svc, repo, _, _ := setup(t)
	sup := newSupplier(t, "t2")

	repo.On("FindByID", mock.MatchedBy(func(ctx context.Context) bool {
		return tenancy.TenantID(ctx) == "t2"
	}), sup.ID).Return(sup, nil)
	repo.On("Update", mock.Anything, sup).Return(nil)

	e := shared.NewDomainEvent(inspection.EventTypeInspectionFailed, inspection.ContextName, shared.Payload{
		"inspectionId": uuid.NewString(),
		"supplierId":   sup.ID.String(),
		"tenantId":     "t2",
	})
	require.NoError(t, svc.HandleInspectionFailed(context.Background(), e))
	assert.Equal(t, 1, sup.QualityIssues)
}

func TestSupplierService_HandleInspectionFailed_Rejects(t *testing.T) {
	svc, _, _, _ := setup(t)

	foreign := shared.NewDomainEvent(inspection.EventTypeInspectionFailed, inspection.ContextName, shared.Payload{
		"supplierId": uuid.NewString(),
		"tenantId":   "t2",
	})
	assert.ErrorIs(t, svc.HandleInspectionFailed(tenantCtx("t1"), foreign), shared.ErrForbidden)

	malformed := shared.NewDomainEvent(inspection.EventTypeInspectionFailed, inspection.ContextName, shared.Payload{
		"supplierId": "not-a-uuid",
		"tenantId":   "t1",
	})
	assert.ErrorIs(t, svc.HandleInspectionFailed(tenantCtx("t1"), malformed), shared.ErrInvalidInput)
}
