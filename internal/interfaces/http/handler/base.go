package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/infrastructure/logger"
	"github.com/distribo/backend/internal/interfaces/http/dto"
	"github.com/distribo/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader lets clients pass a replay key out of band
const IdempotencyKeyHeader = "Idempotency-Key"

// BaseHandler provides shared response helpers for all HTTP handlers
type BaseHandler struct{}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response with the given message
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// HandleError maps an error to its HTTP response. Domain errors carry
// their own code and kind; anything else is a 500 with a generic body.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code, domainErr.Kind)
		c.JSON(status, dto.NewErrorResponseWithDetails(domainErr.Code, domainErr.Message, domainErr.Details))
		return
	}

	logger.FromContext(c.Request.Context()).Error("unhandled error in http handler")
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An internal error occurred"))
}

// OrgID returns the authenticated organization id, aborting with 401 if
// the auth middleware did not run.
func (h *BaseHandler) OrgID(c *gin.Context) (uuid.UUID, bool) {
	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
	}
	return orgID, ok
}

// ActorID returns the authenticated actor id, aborting with 401 if
// the auth middleware did not run.
func (h *BaseHandler) ActorID(c *gin.Context) (uuid.UUID, bool) {
	actorID, ok := middleware.ActorIDFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
	}
	return actorID, ok
}

// UUIDParam parses a path parameter as a UUID, aborting with 400 on failure
func (h *BaseHandler) UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" parameter")
		c.Abort()
		return uuid.Nil, false
	}
	return id, true
}

// IdempotencyKey returns the replay key for a mutating request. The header
// wins over any key embedded in the request body.
func (h *BaseHandler) IdempotencyKey(c *gin.Context, bodyKey string) string {
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		return key
	}
	return bodyKey
}

// pageResponse wraps a paginated result with its pagination meta
func pageResponse[T any](page *shared.Paginated[T]) dto.Response {
	return dto.NewSuccessResponseWithMeta(page.Items, dto.Meta{
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}
