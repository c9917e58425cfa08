package handler

import (
	"github.com/gin-gonic/gin"
	supplierapp "github.com/qms/backend/internal/application/supplier"
	"github.com/qms/backend/internal/infrastructure/registry"
)

// SupplierHandler handles supplier API endpoints
type SupplierHandler struct {
	BaseHandler
	service *registry.Handle[supplierapp.Service]
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(service *registry.Handle[supplierapp.Service]) *SupplierHandler {
	return &SupplierHandler{service: service}
}

// GetByID handles GET /suppliers/:id
func (h *SupplierHandler) GetByID(c *gin.Context) {
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

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	var q supplierapp.SupplierListQuery
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

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req supplierapp.CreateSupplierRequest
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

// Block handles POST /suppliers/:id/block
func (h *SupplierHandler) Block(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req supplierapp.BlockSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.Block(c.Request.Context(), id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// Unblock handles POST /suppliers/:id/unblock
func (h *SupplierHandler) Unblock(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.Unblock(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordQualityIssue handles POST /suppliers/:id/quality-issues
func (h *SupplierHandler) RecordQualityIssue(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req supplierapp.RecordQualityIssueRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.RecordQualityIssue(c.Request.Context(), id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}
