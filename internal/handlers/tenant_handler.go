package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/middleware"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// LimitChecker checks plan ceilings
type LimitChecker interface {
	CheckLimit(ctx context.Context, storeID uuid.UUID, resource models.LimitResource) (*models.LimitCheck, error)
}

// TrialStatusReader reads a user's trial status
type TrialStatusReader interface {
	Status(ctx context.Context, userID uuid.UUID) (*models.TrialStatus, error)
}

// TenantHandler serves the storefront and dashboard endpoints that expose
// the resolved tenant
type TenantHandler struct {
	limits LimitChecker
	trials TrialStatusReader
	logger *logrus.Entry
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(limits LimitChecker, trials TrialStatusReader, logger *logrus.Entry) *TenantHandler {
	return &TenantHandler{
		limits: limits,
		trials: trials,
		logger: logger.WithField("handler", "tenant"),
	}
}

// GetStorefrontStore returns the public identity of the store being browsed
// GET /api/v1/storefront/store
func (h *TenantHandler) GetStorefrontStore(c *gin.Context) {
	tc := middleware.GetTenantContext(c)
	SuccessResponse(c, http.StatusOK, "Store retrieved", tc.Store)
}

// GetContext returns the caller's resolved tenant context
// GET /api/v1/dashboard/context
func (h *TenantHandler) GetContext(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Tenant context retrieved", middleware.GetTenantContext(c))
}

// CheckLimit reports whether the store may add one more unit of a resource
// GET /api/v1/dashboard/limits/:resource
func (h *TenantHandler) CheckLimit(c *gin.Context) {
	tc := middleware.GetTenantContext(c)
	resource := models.LimitResource(strings.ToLower(c.Param("resource")))

	check, err := h.limits.CheckLimit(c.Request.Context(), tc.StoreID, resource)
	if err != nil {
		ServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Limit checked", check)
}

// GetTrial returns the caller's own trial status
// GET /api/v1/dashboard/trial
func (h *TenantHandler) GetTrial(c *gin.Context) {
	tc := middleware.GetTenantContext(c)

	status, err := h.trials.Status(c.Request.Context(), tc.UserID)
	if err != nil {
		ServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Trial status retrieved", status)
}

// CheckPlanAccess reports whether the caller's effective plan unlocks a tier
// GET /api/v1/dashboard/plan/access?tier=
func (h *TenantHandler) CheckPlanAccess(c *gin.Context) {
	required := models.PlanTier(strings.ToUpper(strings.TrimSpace(c.Query("tier"))))
	if !required.IsValid() {
		ErrorResponse(c, h.logger, http.StatusBadRequest, "VALIDATION_ERROR", "tier must be one of FREE, STARTER, PROFESSIONAL, ENTERPRISE", nil)
		return
	}

	tc := middleware.GetTenantContext(c)
	status, err := h.trials.Status(c.Request.Context(), tc.UserID)
	if err != nil {
		ServiceError(c, h.logger, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Plan access evaluated", gin.H{
		"plan":         status.Plan,
		"requiredTier": required,
		"allowed":      models.CanAccessTier(status.Plan, required),
		"hierarchy":    models.PlanHierarchy(),
	})
}
