package handlers

import (
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

func setupTenantRouter(limits LimitChecker, trials TrialStatusReader, tc *models.TenantContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.KeyTenantContext, tc)
		c.Next()
	})

	h := NewTenantHandler(limits, trials, testLogger())
	router.GET("/api/v1/storefront/store", h.GetStorefrontStore)
	router.GET("/api/v1/dashboard/context", h.GetContext)
	router.GET("/api/v1/dashboard/limits/:resource", h.CheckLimit)
	router.GET("/api/v1/dashboard/trial", h.GetTrial)
	router.GET("/api/v1/dashboard/plan/access", h.CheckPlanAccess)
	return router
}

func tenantGet(router *gin.Engine, path string) (*httptest.ResponseRecorder, json.RawMessage) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env.Data
}

func newTenantContext() *models.TenantContext {
	storeID := uuid.New()
	ownerID := uuid.New()
	return &models.TenantContext{
		StoreID:  storeID,
		UserID:   ownerID,
		UserRole: models.RoleStoreOwner,
		Source:   models.SourceSubdomain,
		Store: models.StoreSnapshot{
			ID:        storeID,
			Name:      "Acme",
			Subdomain: "acme",
			OwnerID:   ownerID,
			IsActive:  true,
		},
	}
}

func TestStorefrontAndContext(t *testing.T) {
	tc := newTenantContext()
	router := setupTenantRouter(new(MockLimitChecker), new(MockTrialManager), tc)

	w, data := tenantGet(router, "/api/v1/storefront/store")
	require.Equal(t, http.StatusOK, w.Code)
	var store models.StoreSnapshot
	require.NoError(t, json.Unmarshal(data, &store))
	assert.Equal(t, "acme", store.Subdomain)

	w, data = tenantGet(router, "/api/v1/dashboard/context")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.TenantContext
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, tc.StoreID, got.StoreID)
	assert.Equal(t, models.SourceSubdomain, got.Source)
}

func TestCheckLimit(t *testing.T) {
	tc := newTenantContext()
	limits := new(MockLimitChecker)
	limits.On("CheckLimit", mock.Anything, tc.StoreID, models.ResourceProducts).
		Return(&models.LimitCheck{Allowed: false, Limit: 10, Current: 10}, nil)
	limits.On("CheckLimit", mock.Anything, tc.StoreID, models.LimitResource("seats")).
		Return(nil, services.NewValidationError("resource", "unknown resource seats"))
	limits.On("CheckLimit", mock.Anything, tc.StoreID, models.ResourceStorage).
		Return(nil, errors.New("db down"))

	router := setupTenantRouter(limits, new(MockTrialManager), tc)

	w, data := tenantGet(router, "/api/v1/dashboard/limits/Products")
	require.Equal(t, http.StatusOK, w.Code)
	var check models.LimitCheck
	require.NoError(t, json.Unmarshal(data, &check))
	assert.False(t, check.Allowed)
	assert.Equal(t, int64(10), check.Limit)

	w, _ = tenantGet(router, "/api/v1/dashboard/limits/seats")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = tenantGet(router, "/api/v1/dashboard/limits/storage")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCheckPlanAccess(t *testing.T) {
	tc := newTenantContext()
	trials := new(MockTrialManager)
	trials.On("Status", mock.Anything, tc.UserID).
		Return(&models.TrialStatus{UserID: tc.UserID, State: models.TrialActive, Plan: models.PlanStarter}, nil)

	router := setupTenantRouter(new(MockLimitChecker), trials, tc)

	type access struct {
		Plan      models.PlanTier         `json:"plan"`
		Allowed   bool                    `json:"allowed"`
		Hierarchy map[models.PlanTier]int `json:"hierarchy"`
	}

	w, data := tenantGet(router, "/api/v1/dashboard/plan/access?tier=free")
	require.Equal(t, http.StatusOK, w.Code)
	var got access
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Allowed)
	assert.Equal(t, models.PlanStarter, got.Plan)
	assert.Equal(t, 3, got.Hierarchy[models.PlanEnterprise])

	_, data = tenantGet(router, "/api/v1/dashboard/plan/access?tier=PROFESSIONAL")
	require.NoError(t, json.Unmarshal(data, &got))
	assert.False(t, got.Allowed)

	w, _ = tenantGet(router, "/api/v1/dashboard/plan/access?tier=platinum")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTrial_NotFound(t *testing.T) {
	tc := newTenantContext()
	trials := new(MockTrialManager)
	trials.On("Status", mock.Anything, tc.UserID).Return(nil, services.NewNotFoundError("user", tc.UserID.String()))

	router := setupTenantRouter(new(MockLimitChecker), trials, tc)
	w, _ := tenantGet(router, "/api/v1/dashboard/trial")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
