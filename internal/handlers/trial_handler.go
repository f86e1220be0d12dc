package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/middleware"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/services"
)

// TrialManager is the trial lifecycle as seen by the admin API
type TrialManager interface {
	Extend(ctx context.Context, adminID, userID uuid.UUID, additionalDays int, reason string, meta services.RequestMeta) (*services.ActionResult, error)
	ConvertToPaid(ctx context.Context, adminID, userID uuid.UUID, plan string, meta services.RequestMeta) (*services.ActionResult, error)
	EndTrialEarly(ctx context.Context, adminID, userID uuid.UUID, reason string, meta services.RequestMeta) (*services.ActionResult, error)
	SendReminder(ctx context.Context, adminID, userID uuid.UUID, meta services.RequestMeta) (*services.ActionResult, error)
	Status(ctx context.Context, userID uuid.UUID) (*models.TrialStatus, error)
	GetTrialDetails(ctx context.Context, userID uuid.UUID) (*models.TrialDetails, error)
	ListTrials(ctx context.Context, page, limit int, status string) (*models.TrialListPage, error)
	Stats(ctx context.Context) (*models.TrialStats, error)
}

// TrialHandler handles admin trial management
type TrialHandler struct {
	trials TrialManager
	logger *logrus.Entry
}

// NewTrialHandler creates a new trial handler
func NewTrialHandler(trials TrialManager, logger *logrus.Entry) *TrialHandler {
	return &TrialHandler{
		trials: trials,
		logger: logger.WithField("handler", "trial"),
	}
}

// HandleAction dispatches a trial action
// POST /api/v1/admin/trials
func (h *TrialHandler) HandleAction(c *gin.Context) {
	var req models.TrialActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, h.logger, http.StatusBadRequest, "VALIDATION_ERROR", "action and userId are required", nil)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		ErrorResponse(c, h.logger, http.StatusBadRequest, "VALIDATION_ERROR", "userId must be a valid UUID", nil)
		return
	}

	admin := middleware.GetAdmin(c)
	ctx := c.Request.Context()
	meta := requestMeta(c)

	var result *services.ActionResult
	switch req.Action {
	case models.TrialActionExtend:
		result, err = h.trials.Extend(ctx, admin.ID, userID, req.AdditionalDays, req.Reason, meta)
	case models.TrialActionConvert:
		result, err = h.trials.ConvertToPaid(ctx, admin.ID, userID, req.Plan, meta)
	case models.TrialActionSendReminder:
		result, err = h.trials.SendReminder(ctx, admin.ID, userID, meta)
	case models.TrialActionEnd:
		result, err = h.trials.EndTrialEarly(ctx, admin.ID, userID, req.Reason, meta)
	default:
		ErrorResponse(c, h.logger, http.StatusBadRequest, "VALIDATION_ERROR", "unknown action "+req.Action, nil)
		return
	}

	if err != nil {
		InternalError(c, h.logger, err)
		return
	}
	ActionResponse(c, h.logger, result)
}

// ListTrials lists store owners by trial state
// GET /api/v1/admin/trials
func (h *TrialHandler) ListTrials(c *gin.Context) {
	page, limit := pageParams(c)

	result, err := h.trials.ListTrials(c.Request.Context(), page, limit, c.Query("status"))
	if err != nil {
		ServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Trials retrieved", result)
}

// Stats returns counts per trial state
// GET /api/v1/admin/trials/stats
func (h *TrialHandler) Stats(c *gin.Context) {
	stats, err := h.trials.Stats(c.Request.Context())
	if err != nil {
		InternalError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Trial statistics retrieved", stats)
}

// GetTrial returns trial details for one user
// GET /api/v1/admin/trials/:userId
func (h *TrialHandler) GetTrial(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		ErrorResponse(c, h.logger, http.StatusBadRequest, "VALIDATION_ERROR", "userId must be a valid UUID", nil)
		return
	}

	details, err := h.trials.GetTrialDetails(c.Request.Context(), userID)
	if err != nil {
		ServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Trial retrieved", details)
}
