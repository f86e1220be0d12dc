package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/middleware"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/services"
)

// ErrorResponse sends a standardized error response. Internal errors are
// logged but only exposed to clients in debug mode.
func ErrorResponse(c *gin.Context, log *logrus.Entry, statusCode int, code, message string, err error) {
	requestID := middleware.GetRequestID(c)

	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     statusCode,
		}).Error(message)
	}

	response := models.NewErrorResponse(code, message, requestID)
	if gin.Mode() == gin.DebugMode && err != nil {
		response.ErrorDetails = err.Error()
	}

	c.JSON(statusCode, response)
}

// SuccessResponse sends a standardized success response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": middleware.GetRequestID(c),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if data != nil {
		response["data"] = data
	}

	c.JSON(statusCode, response)
}

// InternalError hides the cause of an unexpected failure behind a 500
func InternalError(c *gin.Context, log *logrus.Entry, err error) {
	ErrorResponse(c, log, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
}

// ServiceError maps typed service errors onto 400 and 404 and anything else onto 500
func ServiceError(c *gin.Context, log *logrus.Entry, err error) {
	if vErr, ok := services.IsValidationError(err); ok {
		ErrorResponse(c, log, http.StatusBadRequest, "VALIDATION_ERROR", vErr.Error(), nil)
		return
	}
	if nfErr, ok := services.IsNotFoundError(err); ok {
		ErrorResponse(c, log, http.StatusNotFound, "NOT_FOUND", nfErr.Error(), nil)
		return
	}
	InternalError(c, log, err)
}

// ActionResponse writes the outcome of a business action
func ActionResponse(c *gin.Context, log *logrus.Entry, result *services.ActionResult) {
	if result.Success {
		SuccessResponse(c, http.StatusOK, result.Message, result.Data)
		return
	}
	ErrorResponse(c, log, statusForCode(result.Code), string(result.Code), result.Message, nil)
}

func statusForCode(code services.ResultCode) int {
	switch code {
	case services.CodeNotFound:
		return http.StatusNotFound
	case services.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
