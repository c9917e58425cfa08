package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qms/backend/internal/application/common"
	"github.com/qms/backend/internal/domain/shared"
	"github.com/qms/backend/internal/infrastructure/registry"
	"github.com/qms/backend/internal/interfaces/http/dto"
	"github.com/qms/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error writes the error response for err. Domain errors keep their status,
// anything else is reported as an internal error.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

// BindJSON binds the request body into req, writing a 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.Error(c, err)
		return false
	}
	return true
}

// BindQuery binds the query string into req, writing a 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.Error(c, err)
		return false
	}
	return true
}

// ParamID parses the named route parameter as a UUID, writing a 400 on failure
func (h *BaseHandler) ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("invalid %s", name)))
		return uuid.Nil, false
	}
	return id, true
}

// Page writes a list page with its pagination meta
func Page[T any](h *BaseHandler, c *gin.Context, page common.Page[T]) {
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// resolve returns the service currently bound to handle. A missing or
// non-conforming binding is reported as a server error.
func resolve[T any](h *BaseHandler, c *gin.Context, handle *registry.Handle[T]) (T, bool) {
	svc, err := handle.Get()
	if err != nil {
		h.Error(c, fmt.Errorf("%w: service %s unavailable: %v", shared.ErrContractViolation, handle.Name(), err))
		var zero T
		return zero, false
	}
	return svc, true
}
