package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/services"
)

func setupActivityRouter(logs ActivityLogReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewActivityLogHandler(logs, testLogger())
	router.GET("/api/v1/admin/activity-logs", h.List)
	router.GET("/api/v1/admin/activity-logs/summary", h.Summary)
	return router
}

func TestActivityLogList_ParsesFilter(t *testing.T) {
	adminID := uuid.New()
	logs := new(MockActivityLogReader)

	var captured models.ActivityLogFilter
	logs.On("Query", mock.Anything, 3, 50, mock.AnythingOfType("models.ActivityLogFilter")).
		Run(func(args mock.Arguments) {
			captured = args.Get(3).(models.ActivityLogFilter)
		}).
		Return(&models.ActivityLogPage{Logs: []models.AdminActivityLog{}, Pagination: models.NewPagination(3, 50, 0)}, nil)

	router := setupActivityRouter(logs)
	w := httptest.NewRecorder()
	path := "/api/v1/admin/activity-logs?page=3&limit=50&adminId=" + adminID.String() +
		"&action=TRIAL_EXTENDED&targetType=USER&targetId=abc&dateFrom=2026-03-01&dateTo=2026-03-02"
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured.AdminID)
	assert.Equal(t, adminID, *captured.AdminID)
	assert.Equal(t, models.ActionTrialExtended, captured.Action)
	assert.Equal(t, models.TargetUser, captured.TargetType)
	assert.Equal(t, "abc", captured.TargetID)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *captured.DateFrom)
	// a bare dateTo covers the whole day
	assert.Equal(t, time.Date(2026, 3, 2, 23, 59, 59, 999999999, time.UTC), *captured.DateTo)
}

func TestActivityLogList_RejectsBadFilters(t *testing.T) {
	router := setupActivityRouter(new(MockActivityLogReader))

	for _, query := range []string{
		"adminId=nope",
		"action=DELETE_EVERYTHING",
		"targetType=PLANET",
		"dateFrom=yesterday",
		"dateTo=03/02/2026",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/activity-logs?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestActivitySummary(t *testing.T) {
	logs := new(MockActivityLogReader)
	logs.On("Summary", mock.Anything, time.Duration(0)).Return(&models.ActivitySummary{Total: 1}, nil)
	logs.On("Summary", mock.Anything, 7*24*time.Hour).Return(&models.ActivitySummary{Total: 9}, nil)
	logs.On("Summary", mock.Anything, 2400*time.Hour).Return(nil, services.NewValidationError("window", "must not exceed 90 days"))

	router := setupActivityRouter(logs)
	get := func(query string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/activity-logs/summary"+query, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get(""))
	assert.Equal(t, http.StatusOK, get("?window=7d"))
	assert.Equal(t, http.StatusBadRequest, get("?window=100d"))
	assert.Equal(t, http.StatusBadRequest, get("?window=-1h"))
	assert.Equal(t, http.StatusBadRequest, get("?window=soon"))
	assert.Equal(t, http.StatusBadRequest, get("?window=200000d"))
	assert.Equal(t, http.StatusBadRequest, get("?window=9223372036854775807d"))

	logs.AssertExpectations(t)
	logs.AssertNumberOfCalls(t, "Summary", 3)
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"24h", 24 * time.Hour, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"36500d", 36500 * 24 * time.Hour, true},
		{"36501d", 0, false},
		{"200000d", 0, false},
		{"0d", 0, false},
		{"-3d", 0, false},
		{"0s", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseWindow(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Positive(t, int64(got))
			}
		})
	}
}
