package handler

import (
	"github.com/gin-gonic/gin"
	componentapp "github.com/qms/backend/internal/application/component"
	"github.com/qms/backend/internal/infrastructure/registry"
)

// ComponentHandler handles component API endpoints
type ComponentHandler struct {
	BaseHandler
	service *registry.Handle[componentapp.Service]
}

// NewComponentHandler creates a new ComponentHandler
func NewComponentHandler(service *registry.Handle[componentapp.Service]) *ComponentHandler {
	return &ComponentHandler{service: service}
}

// GetByID handles GET /components/:id
func (h *ComponentHandler) GetByID(c *gin.Context) {
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

// List handles GET /components
func (h *ComponentHandler) List(c *gin.Context) {
	var q componentapp.ComponentListQuery
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

// Register handles POST /components
func (h *ComponentHandler) Register(c *gin.Context) {
	var req componentapp.RegisterComponentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svc, ok := resolve(&h.BaseHandler, c, h.service)
	if !ok {
		return
	}
	resp, err := svc.Register(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, resp)
}
