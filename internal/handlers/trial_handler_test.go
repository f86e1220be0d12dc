package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/middleware"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/services"
)

type envelope struct {
	Success   bool            `json:"success"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func withAdmin(admin *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.KeyAdmin, admin)
		c.Next()
	}
}

func setupTrialRouter(trials TrialManager, admin *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID(), withAdmin(admin))

	h := NewTrialHandler(trials, testLogger())
	router.POST("/api/v1/admin/trials", h.HandleAction)
	router.GET("/api/v1/admin/trials", h.ListTrials)
	router.GET("/api/v1/admin/trials/stats", h.Stats)
	router.GET("/api/v1/admin/trials/:userId", h.GetTrial)
	return router
}

func postAction(router *gin.Engine, body interface{}) (*httptest.ResponseRecorder, envelope) {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/trials", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandleAction_Dispatch(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	userID := uuid.New()
	ok := &services.ActionResult{Success: true, Message: "done"}

	trials := new(MockTrialManager)
	trials.On("Extend", mock.Anything, admin.ID, userID, 7, "sales", mock.Anything).Return(ok, nil)
	trials.On("ConvertToPaid", mock.Anything, admin.ID, userID, "STARTER", mock.Anything).Return(ok, nil)
	trials.On("SendReminder", mock.Anything, admin.ID, userID, mock.Anything).Return(ok, nil)
	trials.On("EndTrialEarly", mock.Anything, admin.ID, userID, "abuse", mock.Anything).Return(ok, nil)

	router := setupTrialRouter(trials, admin)

	bodies := []gin.H{
		{"action": "extend_trial", "userId": userID.String(), "additionalDays": 7, "reason": "sales"},
		{"action": "convert_to_paid", "userId": userID.String(), "plan": "STARTER"},
		{"action": "send_reminder", "userId": userID.String()},
		{"action": "end_trial", "userId": userID.String(), "reason": "abuse"},
	}
	for _, body := range bodies {
		w, env := postAction(router, body)
		assert.Equal(t, http.StatusOK, w.Code, body["action"])
		assert.True(t, env.Success)
		assert.NotEmpty(t, env.RequestID)
	}

	trials.AssertExpectations(t)
}

func TestHandleAction_StatusMapping(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleSuperAdmin}
	userID := uuid.New()

	trials := new(MockTrialManager)
	trials.On("EndTrialEarly", mock.Anything, admin.ID, userID, "", mock.Anything).
		Return(&services.ActionResult{Code: services.CodeInvalidState, Message: "trial already ended"}, nil)
	trials.On("ConvertToPaid", mock.Anything, admin.ID, userID, "GOLD", mock.Anything).
		Return(&services.ActionResult{Code: services.CodeInvalidInput, Message: "invalid plan"}, nil)
	trials.On("SendReminder", mock.Anything, admin.ID, userID, mock.Anything).
		Return(&services.ActionResult{Code: services.CodeNotFound, Message: "user not found"}, nil)
	trials.On("Extend", mock.Anything, admin.ID, userID, 3, "", mock.Anything).
		Return(nil, errors.New("pq: connection refused"))

	router := setupTrialRouter(trials, admin)

	w, env := postAction(router, gin.H{"action": "end_trial", "userId": userID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "trial already ended", env.Message)

	w, _ = postAction(router, gin.H{"action": "convert_to_paid", "userId": userID.String(), "plan": "GOLD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = postAction(router, gin.H{"action": "send_reminder", "userId": userID.String()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = postAction(router, gin.H{"action": "extend_trial", "userId": userID.String(), "additionalDays": 3})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, env.Message, "connection refused")
}

func TestHandleAction_BadRequests(t *testing.T) {
	router := setupTrialRouter(new(MockTrialManager), &models.User{ID: uuid.New(), Role: models.RoleAdmin})

	w, _ := postAction(router, gin.H{"userId": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = postAction(router, gin.H{"action": "extend_trial", "userId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := postAction(router, gin.H{"action": "delete_user", "userId": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "delete_user")
}

func TestTrialReads(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	userID := uuid.New()
	missing := uuid.New()

	trials := new(MockTrialManager)
	trials.On("ListTrials", mock.Anything, 2, 10, "expiring").
		Return(&models.TrialListPage{Trials: []models.TrialStatus{}, Pagination: models.NewPagination(2, 10, 0)}, nil)
	trials.On("ListTrials", mock.Anything, 1, 20, "zombie").
		Return(nil, services.NewValidationError("status", "unknown trial status"))
	trials.On("Stats", mock.Anything).Return(&models.TrialStats{Active: 3, Converted: 1}, nil)
	trials.On("GetTrialDetails", mock.Anything, userID).
		Return(&models.TrialDetails{TrialStatus: models.TrialStatus{UserID: userID, State: models.TrialActive}, ExtensionCount: 2}, nil)
	trials.On("GetTrialDetails", mock.Anything, missing).
		Return(nil, services.NewNotFoundError("user", missing.String()))

	router := setupTrialRouter(trials, admin)
	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, get("/api/v1/admin/trials?page=2&limit=10&status=expiring").Code)
	assert.Equal(t, http.StatusBadRequest, get("/api/v1/admin/trials?status=zombie").Code)

	w := get("/api/v1/admin/trials/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var stats models.TrialStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(3), stats.Active)

	assert.Equal(t, http.StatusOK, get("/api/v1/admin/trials/"+userID.String()).Code)
	assert.Equal(t, http.StatusNotFound, get("/api/v1/admin/trials/"+missing.String()).Code)
	assert.Equal(t, http.StatusBadRequest, get("/api/v1/admin/trials/nope").Code)
}
