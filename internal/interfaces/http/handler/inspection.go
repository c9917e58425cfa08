package handler

import (
	"github.com/gin-gonic/gin"
	inspectionapp "github.com/qms/backend/internal/application/inspection"
	"github.com/qms/backend/internal/infrastructure/registry"
)

// InspectionHandler handles inspection API endpoints
type InspectionHandler struct {
	BaseHandler
	service *registry.Handle[inspectionapp.Service]
}

// NewInspectionHandler creates a new InspectionHandler
func NewInspectionHandler(service *registry.Handle[inspectionapp.Service]) *InspectionHandler {
	return &InspectionHandler{service: service}
}

// GetByID handles GET /inspections/:id
func (h *InspectionHandler) GetByID(c *gin.Context) {
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

// List handles GET /inspections
func (h *InspectionHandler) List(c *gin.Context) {
	var q inspectionapp.InspectionListQuery
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

// Schedule handles POST /inspections
func (h *InspectionHandler) Schedule(c *gin.Context) {
	var req inspectionapp.ScheduleInspectionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.Schedule(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}

// Complete handles POST /inspections/:id/complete
func (h *InspectionHandler) Complete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req inspectionapp.CompleteInspectionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, resp)
}
