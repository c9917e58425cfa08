package customer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/customer"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/event"
	"github.com/qms/backend/internal/infrastructure/registry"
	"github.com/qms/backend/internal/infrastructure/tenancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCustomerRepository is a mock implementation of customer.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, conditions map[string]any) (int64, error) {
	args := m.Called(ctx, conditions)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, code string) (*customer.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

type received struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *received) Handle(_ context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *received) all() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.DomainEvent(nil), r.events...)
}

func setup(t *testing.T) (*CustomerService, *MockCustomerRepository, *received) {
	t.Helper()
	bus := event.NewDomainEventBus(zap.NewNop())
	require.NoError(t, RegisterSchemas(bus))

	rec := &received{}
	bus.SubscribeContext(customer.ContextName, "test", customer.EventTypeCustomerCreated, rec)

	repo := new(MockCustomerRepository)
	svc := NewCustomerService(repo, event.NewAggregatePublisher(bus, zap.NewNop()), zap.NewNop())
	return svc, repo, rec
}

func tenantCtx(id string) context.Context {
	return tenancy.NewContext(context.Background(), tenancy.TenantContext{TenantID: id})
}

func TestCustomerService_Create(t *testing.T) {
	t.Run("creates and publishes", func(t *testing.T) {
		svc, repo, rec := setup(t)
		ctx := tenantCtx("t1")

		repo.On("FindByCode", ctx, "CUS001").Return(nil, shared.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)

		resp, err := svc.Create(ctx, CreateCustomerRequest{Code: "cus001", Name: "Acme", Email: "buyer@acme.io"})
		require.NoError(t, err)
		assert.Equal(t, "CUS001", resp.Code)
		assert.Equal(t, "t1", resp.TenantID)

		events := rec.all()
		require.Len(t, events, 1)
		assert.Equal(t, customer.EventTypeCustomerCreated, events[0].Type())
		assert.Equal(t, resp.ID.String(), events[0].String("customerId"))
		repo.AssertExpectations(t)
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc, repo, rec := setup(t)
		ctx := tenantCtx("t1")

		existing, err := customer.NewCustomer("t1", "CUS001", "Acme", "")
		require.NoError(t, err)
		repo.On("FindByCode", ctx, "CUS001").Return(existing, nil)

		_, err = svc.Create(ctx, CreateCustomerRequest{Code: "CUS001", Name: "Acme"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, rec.all())
	})

	t.Run("repository failure publishes nothing", func(t *testing.T) {
		svc, repo, rec := setup(t)
		ctx := tenantCtx("t1")
		boom := errors.New("connection reset")

		repo.On("FindByCode", ctx, "CUS001").Return(nil, shared.ErrNotFound)
		repo.On("Create", ctx, mock.Anything).Return(boom)

		_, err := svc.Create(ctx, CreateCustomerRequest{Code: "CUS001", Name: "Acme"})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, rec.all())
	})

	t.Run("event rejected by schema persists nothing", func(t *testing.T) {
		bus := event.NewDomainEventBus(zap.NewNop())
		strict := CustomerCreatedSchema
		strict.RequiredFields = append([]string{"region"}, CustomerCreatedSchema.RequiredFields...)
		require.NoError(t, bus.RegisterEventSchema(customer.EventTypeCustomerCreated, strict))
		rec := &received{}
		bus.SubscribeContext(customer.ContextName, "test", customer.EventTypeCustomerCreated, rec)

		repo := new(MockCustomerRepository)
		svc := NewCustomerService(repo, event.NewAggregatePublisher(bus, zap.NewNop()), zap.NewNop())
		ctx := tenantCtx("t1")
		repo.On("FindByCode", ctx, "CUS001").Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, CreateCustomerRequest{Code: "CUS001", Name: "Acme"})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrSchemaValidation)
		assert.Contains(t, err.Error(), "region")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, rec.all())
	})

	t.Run("requires tenant", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Create(context.Background(), CreateCustomerRequest{Code: "CUS001", Name: "Acme"})
		assert.ErrorIs(t, err, shared.ErrNoTenantContext)
	})

	t.Run("invalid input", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.Create(tenantCtx("t1"), CreateCustomerRequest{Code: "CUS 001", Name: "Acme"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestCustomerService_GetAndList(t *testing.T) {
	svc, repo, _ := setup(t)
	ctx := tenantCtx("t1")

	c, err := customer.NewCustomer("t1", "CUS001", "Acme", "")
	require.NoError(t, err)

	repo.On("FindByID", ctx, c.ID).Return(c, nil)
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Conditions["code"] == "CUS001" && f.PageSize == 20
	})).Return([]customer.Customer{*c}, nil)
	repo.On("Count", ctx, map[string]any{"code": "CUS001"}).Return(int64(1), nil)

	got, err := svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	page, err := svc.List(ctx, CustomerListQuery{Code: "CUS001"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, c.ID, page.Items[0].ID)
	repo.AssertExpectations(t)
}

func TestCustomerCreatedSchema(t *testing.T) {
	bus := event.NewDomainEventBus(zap.NewNop())
	require.NoError(t, RegisterSchemas(bus))

	err := bus.PublishFromContext(context.Background(), customer.ContextName,
		shared.NewDomainEvent(customer.EventTypeCustomerCreated, customer.ContextName, shared.Payload{
			"customerId": uuid.NewString(),
			"name":       "Acme",
			"tenantId":   "t1",
		}))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "code")
}

func TestRegister(t *testing.T) {
	r := registry.NewServiceRegistry(zap.NewNop())
	svc, _, _ := setup(t)

	require.NoError(t, Register(r, svc))
	resolved, err := registry.Resolve[Service](r, ServiceName)
	require.NoError(t, err)
	assert.Same(t, svc, resolved)
}
