package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// ActivityLogReader is the read side of the audit trail
type ActivityLogReader interface {
	Query(ctx context.Context, page, limit int, filter models.ActivityLogFilter) (*models.ActivityLogPage, error)
	Summary(ctx context.Context, window time.Duration) (*models.ActivitySummary, error)
}

// ActivityLogHandler serves the admin activity log
type ActivityLogHandler struct {
	logs   ActivityLogReader
	logger *logrus.Entry
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(logs ActivityLogReader, logger *logrus.Entry) *ActivityLogHandler {
	return &ActivityLogHandler{
		logs:   logs,
		logger: logger.WithField("handler", "activity_log"),
	}
}

// List returns a filtered page of audit entries, newest first
// GET /api/v1/admin/activity-logs
func (h *ActivityLogHandler) List(c *gin.Context) {
	filter, msg := parseActivityFilter(c)
	if msg != "" {
		ErrorResponse(c, h.logger, http.StatusBadRequest, "VALIDATION_ERROR", msg, nil)
		return
	}

	page, limit := pageParams(c)
	result, err := h.logs.Query(c.Request.Context(), page, limit, filter)
	if err != nil {
		InternalError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Activity logs retrieved", result)
}

// Summary aggregates recent audit entries per action and target type
// GET /api/v1/admin/activity-logs/summary?window=24h
func (h *ActivityLogHandler) Summary(c *gin.Context) {
	var window time.Duration
	if v := c.Query("window"); v != "" {
		var ok bool
		if window, ok = parseWindow(v); !ok {
			ErrorResponse(c, h.logger, http.StatusBadRequest, "VALIDATION_ERROR", "window must be a duration such as 24h or 7d", nil)
			return
		}
	}

	summary, err := h.logs.Summary(c.Request.Context(), window)
	if err != nil {
		ServiceError(c, h.logger, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Activity summary retrieved", summary)
}

// maxWindowDays keeps the "Nd" form inside time.Duration range; the
// service enforces the tighter summary limit
const maxWindowDays = 36500

// parseWindow accepts Go durations plus a whole-day "Nd" form
func parseWindow(v string) (time.Duration, bool) {
	if days, found := strings.CutSuffix(v, "d"); found {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 || n > maxWindowDays {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func parseActivityFilter(c *gin.Context) (models.ActivityLogFilter, string) {
	var filter models.ActivityLogFilter

	if v := c.Query("adminId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, "adminId must be a valid UUID"
		}
		filter.AdminID = &id
	}
	if v := c.Query("action"); v != "" {
		filter.Action = models.AdminAction(v)
		if !filter.Action.IsValid() {
			return filter, "unknown action " + v
		}
	}
	if v := c.Query("targetType"); v != "" {
		filter.TargetType = models.TargetType(v)
		if !filter.TargetType.IsValid() {
			return filter, "unknown targetType " + v
		}
	}
	filter.TargetID = c.Query("targetId")

	if v := c.Query("dateFrom"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			return filter, "dateFrom must be RFC3339 or YYYY-MM-DD"
		}
		filter.DateFrom = &t
	}
	if v := c.Query("dateTo"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			return filter, "dateTo must be RFC3339 or YYYY-MM-DD"
		}
		// A bare date includes the whole day
		if len(v) == len("2006-01-02") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		filter.DateTo = &t
	}

	return filter, ""
}

func parseDate(v string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	return time.Time{}, false
}
