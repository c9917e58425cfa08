package handler

import (
	"github.com/gin-gonic/gin"
	customerapp "github.com/qms/backend/internal/application/customer"
	"github.com/qms/backend/internal/infrastructure/registry"
)

// CustomerHandler handles customer API endpoints
type CustomerHandler struct {
	BaseHandler
	service *registry.Handle[customerapp.Service]
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(service *registry.Handle[customerapp.Service]) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerapp.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.Create(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	var q customerapp.CustomerListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	page, err := svc.List(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}
	Page(&h.BaseHandler, c, page)
}
