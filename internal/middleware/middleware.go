package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

const (
	// Context keys
	KeyRequestID     = "request_id"
	KeyRequestKind   = "request_kind"
	KeyTenantContext = "tenant_context"
	KeyAdmin         = "admin_user"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(KeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogger middleware logs request information
func RequestLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		statusCode := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"status":     statusCode,
			"method":     c.Request.Method,
			"path":       path,
			"latency":    time.Since(start),
			"request_id": GetRequestID(c),
		})

		if kind := GetRequestKind(c); kind != "" {
			entry = entry.WithField("kind", kind)
		}
		if tc := GetTenantContext(c); tc != nil {
			entry = entry.WithFields(logrus.Fields{
				"store_id": tc.StoreID,
				"user_id":  tc.UserID,
			})
		}
		if admin := GetAdmin(c); admin != nil {
			entry = entry.WithField("admin_id", admin.ID)
		}

		if statusCode >= 500 {
			entry.Error("request completed with error")
		} else if statusCode >= 400 {
			entry.Warn("request completed with client error")
		} else {
			entry.Info("request completed")
		}
	}
}

// CORS configures CORS for the dashboard and admin console origins
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID",
		},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.NewErrorResponse(code, message, GetRequestID(c)))
}

// Helper functions to get context values

// GetRequestID retrieves the request ID from context
func GetRequestID(c *gin.Context) string {
	if val, exists := c.Get(KeyRequestID); exists {
		return val.(string)
	}
	return ""
}

// GetRequestKind retrieves the request classification from context
func GetRequestKind(c *gin.Context) RequestKind {
	if val, exists := c.Get(KeyRequestKind); exists {
		return val.(RequestKind)
	}
	return ""
}

// GetTenantContext retrieves the resolved tenant from context
func GetTenantContext(c *gin.Context) *models.TenantContext {
	if val, exists := c.Get(KeyTenantContext); exists {
		return val.(*models.TenantContext)
	}
	return nil
}

// GetAdmin retrieves the authenticated admin from context
func GetAdmin(c *gin.Context) *models.User {
	if val, exists := c.Get(KeyAdmin); exists {
		return val.(*models.User)
	}
	return nil
}

