package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/botforce/unity/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// identity returns the authenticated tenant and user. It writes a 401 and
// returns false when the auth middleware did not run.
func (h *BaseHandler) identity(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID = middleware.GetTenantID(c)
	userID = middleware.GetUserID(c)
	if tenantID == uuid.Nil || userID == uuid.Nil {
		h.HandleError(c, shared.NewAuthError(""))
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// pathID parses a UUID path parameter
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body and writes the validation response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return true
	}
	return h.bindJSON(c, obj)
}

func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

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

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError maps an error onto the response envelope.
//
// Domain errors keep their code and message. AppErrors use their own status;
// non-operational ones are logged with the cause and masked. Anything else is
// treated as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *shared.AppError
	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &appErr):
	case errors.As(err, &domainErr):
		appErr = dto.ToAppError(domainErr)
	default:
		appErr = shared.NewInternalError(err)
	}

	log := logger.L(c.Request.Context())
	switch {
	case !appErr.Operational || appErr.Status >= http.StatusInternalServerError:
		log.Error("request failed",
			zap.String("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	case appErr.Kind == shared.KindExternalService:
		log.Warn("external service failure",
			zap.String("service", appErr.Service),
			zap.Error(err),
		)
	}

	if appErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(appErr.RetryAfter.Seconds())))
	}

	requestID := getRequestID(c)
	if len(appErr.Fields) > 0 {
		c.JSON(appErr.Status, dto.NewValidationErrorResponse(appErr.PublicMessage(), requestID, appErr.Fields))
		return
	}
	c.JSON(appErr.Status, dto.NewErrorResponseWithRequestID(appErr.Code, appErr.PublicMessage(), requestID))
}
