package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	supplierapp "github.com/qms/backend/internal/application/supplier"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSupplierService struct {
	mock.Mock
}

func (m *MockSupplierService) Create(ctx context.Context, req supplierapp.CreateSupplierRequest) (*supplierapp.SupplierResponse, error) {
	args := m.Called(ctx, req)
	return supplierResult(args)
}

func (m *MockSupplierService) GetByID(ctx context.Context, id uuid.UUID) (*supplierapp.SupplierResponse, error) {
	args := m.Called(ctx, id)
	return supplierResult(args)
}

func (m *MockSupplierService) List(ctx context.Context, q supplierapp.SupplierListQuery) (common.Page[supplierapp.SupplierResponse], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(common.Page[supplierapp.SupplierResponse]), args.Error(1)
}

func (m *MockSupplierService) Block(ctx context.Context, id uuid.UUID, req supplierapp.BlockSupplierRequest) (*supplierapp.SupplierResponse, error) {
	args := m.Called(ctx, id, req)
	return supplierResult(args)
}

func (m *MockSupplierService) Unblock(ctx context.Context, id uuid.UUID) (*supplierapp.SupplierResponse, error) {
	args := m.Called(ctx, id)
	return supplierResult(args)
}

func (m *MockSupplierService) RecordQualityIssue(ctx context.Context, id uuid.UUID, req supplierapp.RecordQualityIssueRequest) (*supplierapp.SupplierResponse, error) {
	args := m.Called(ctx, id, req)
	return supplierResult(args)
}

func supplierResult(args mock.Arguments) (*supplierapp.SupplierResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplierapp.SupplierResponse), args.Error(1)
}

func newSupplierRouter(t *testing.T) (*gin.Engine, *MockSupplierService, *registry.ServiceRegistry) {
	t.Helper()
	reg := registry.NewServiceRegistry(zap.NewNop())
	svc := new(MockSupplierService)
	require.NoError(t, supplierapp.Register(reg, svc))

	h := NewSupplierHandler(registry.NewHandle[supplierapp.Service](reg, supplierapp.ServiceName))
	router := gin.New()
	suppliers := router.Group("/suppliers")
	suppliers.POST("", h.Create)
	suppliers.GET("", h.List)
	suppliers.GET("/:id", h.GetByID)
	suppliers.POST("/:id/block", h.Block)
	suppliers.POST("/:id/unblock", h.Unblock)
	suppliers.POST("/:id/quality-issues", h.RecordQualityIssue)
	return router, svc, reg
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSupplierHandler_Create(t *testing.T) {
	router, svc, _ := newSupplierRouter(t)
	id := uuid.New()
	svc.On("Create", mock.Anything, supplierapp.CreateSupplierRequest{Code: "SUP001", Name: "Acme Castings"}).
		Return(&supplierapp.SupplierResponse{ID: id, Code: "SUP001", Status: "ACTIVE"}, nil).Once()

	w := do(router, http.MethodPost, "/suppliers", `{"code":"SUP001","name":"Acme Castings"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, id.String(), data["id"])
	assert.Equal(t, "ACTIVE", data["status"])
	svc.AssertExpectations(t)
}

func TestSupplierHandler_CreateRejectsInvalidBody(t *testing.T) {
	router, svc, _ := newSupplierRouter(t)

	w := do(router, http.MethodPost, "/suppliers", `{"name":"Acme Castings"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, shared.CodeInvalidInput, resp.Code)
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "code", resp.Details[0].Field)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSupplierHandler_GetByID(t *testing.T) {
	router, svc, _ := newSupplierRouter(t)
	missing := uuid.New()
	svc.On("GetByID", mock.Anything, missing).Return(nil, shared.ErrNotFound).Once()

	w := do(router, http.MethodGet, "/suppliers/"+missing.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, shared.CodeNotFound, decodeError(t, w).Code)

	w = do(router, http.MethodGet, "/suppliers/SUP001", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestSupplierHandler_List(t *testing.T) {
	router, svc, _ := newSupplierRouter(t)
	page := common.Page[supplierapp.SupplierResponse]{
		Items:    []supplierapp.SupplierResponse{{Code: "SUP002", Status: "BLOCKED"}},
		Total:    41,
		Page:     3,
		PageSize: 20,
	}
	svc.On("List", mock.Anything, mock.MatchedBy(func(q supplierapp.SupplierListQuery) bool {
		return q.Status == "BLOCKED" && q.Page == 3
	})).Return(page, nil).Once()

	w := do(router, http.MethodGet, "/suppliers?status=BLOCKED&page=3", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Len(t, resp.Data, 1)

	w = do(router, http.MethodGet, "/suppliers?status=RETIRED", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestSupplierHandler_BlockLifecycle(t *testing.T) {
	router, svc, _ := newSupplierRouter(t)
	id := uuid.New()
	svc.On("Block", mock.Anything, id, supplierapp.BlockSupplierRequest{Reason: "audit"}).
		Return(&supplierapp.SupplierResponse{ID: id, Status: "BLOCKED", BlockReason: "audit"}, nil).Once()
	svc.On("Unblock", mock.Anything, id).
		Return(nil, shared.NewDomainError(shared.CodeInvalidState, "supplier is not blocked")).Once()
	svc.On("RecordQualityIssue", mock.Anything, id, supplierapp.RecordQualityIssueRequest{Reason: "burrs"}).
		Return(&supplierapp.SupplierResponse{ID: id, Status: "ACTIVE", QualityIssues: 1}, nil).Once()

	w := do(router, http.MethodPost, "/suppliers/"+id.String()+"/block", `{"reason":"audit"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BLOCKED", decodeResponse(t, w).Data.(map[string]any)["status"])

	w = do(router, http.MethodPost, "/suppliers/"+id.String()+"/unblock", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "supplier is not blocked", decodeError(t, w).Message)

	w = do(router, http.MethodPost, "/suppliers/"+id.String()+"/quality-issues", `{"reason":"burrs"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeResponse(t, w).Data.(map[string]any)["qualityIssues"])
	svc.AssertExpectations(t)
}

func TestSupplierHandler_ResolvesCurrentBinding(t *testing.T) {
	router, first, reg := newSupplierRouter(t)
	id := uuid.New()
	first.On("GetByID", mock.Anything, id).Return(&supplierapp.SupplierResponse{ID: id, Name: "first"}, nil).Once()

	w := do(router, http.MethodGet, "/suppliers/"+id.String(), "")
	assert.Equal(t, "first", decodeResponse(t, w).Data.(map[string]any)["name"])

	second := new(MockSupplierService)
	second.On("GetByID", mock.Anything, id).Return(&supplierapp.SupplierResponse{ID: id, Name: "second"}, nil).Once()
	require.NoError(t, reg.RegisterImplementation(supplierapp.ServiceName, second))

	w = do(router, http.MethodGet, "/suppliers/"+id.String(), "")
	assert.Equal(t, "second", decodeResponse(t, w).Data.(map[string]any)["name"])
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestSupplierHandler_ServiceUnavailable(t *testing.T) {
	router, _, reg := newSupplierRouter(t)
	reg.Clear()

	w := do(router, http.MethodGet, "/suppliers/"+uuid.NewString(), "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, shared.CodeContractViolation, resp.Code)
	assert.Equal(t, "Internal server error", resp.Message)
}
