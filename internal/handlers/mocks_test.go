package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/services"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

// MockTrialManager is a mock implementation of TrialManager
type MockTrialManager struct {
	mock.Mock
}

func (m *MockTrialManager) Extend(ctx context.Context, adminID, userID uuid.UUID, additionalDays int, reason string, meta services.RequestMeta) (*services.ActionResult, error) {
	args := m.Called(ctx, adminID, userID, additionalDays, reason, meta)
	return actionResult(args)
}

func (m *MockTrialManager) ConvertToPaid(ctx context.Context, adminID, userID uuid.UUID, plan string, meta services.RequestMeta) (*services.ActionResult, error) {
	args := m.Called(ctx, adminID, userID, plan, meta)
	return actionResult(args)
}

func (m *MockTrialManager) EndTrialEarly(ctx context.Context, adminID, userID uuid.UUID, reason string, meta services.RequestMeta) (*services.ActionResult, error) {
	args := m.Called(ctx, adminID, userID, reason, meta)
	return actionResult(args)
}

func (m *MockTrialManager) SendReminder(ctx context.Context, adminID, userID uuid.UUID, meta services.RequestMeta) (*services.ActionResult, error) {
	args := m.Called(ctx, adminID, userID, meta)
	return actionResult(args)
}

func (m *MockTrialManager) Status(ctx context.Context, userID uuid.UUID) (*models.TrialStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrialStatus), args.Error(1)
}

func (m *MockTrialManager) GetTrialDetails(ctx context.Context, userID uuid.UUID) (*models.TrialDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrialDetails), args.Error(1)
}

func (m *MockTrialManager) ListTrials(ctx context.Context, page, limit int, status string) (*models.TrialListPage, error) {
	args := m.Called(ctx, page, limit, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrialListPage), args.Error(1)
}

func (m *MockTrialManager) Stats(ctx context.Context) (*models.TrialStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrialStats), args.Error(1)
}

func actionResult(args mock.Arguments) (*services.ActionResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ActionResult), args.Error(1)
}

// MockActivityLogReader is a mock implementation of ActivityLogReader
type MockActivityLogReader struct {
	mock.Mock
}

func (m *MockActivityLogReader) Query(ctx context.Context, page, limit int, filter models.ActivityLogFilter) (*models.ActivityLogPage, error) {
	args := m.Called(ctx, page, limit, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityLogPage), args.Error(1)
}

func (m *MockActivityLogReader) Summary(ctx context.Context, window time.Duration) (*models.ActivitySummary, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivitySummary), args.Error(1)
}

// MockStoreAdministrator is a mock implementation of StoreAdministrator
type MockStoreAdministrator struct {
	mock.Mock
}

func (m *MockStoreAdministrator) SetStoreActive(ctx context.Context, adminID, storeID uuid.UUID, active bool, reason string, meta services.RequestMeta) (*services.ActionResult, error) {
	args := m.Called(ctx, adminID, storeID, active, reason, meta)
	return actionResult(args)
}

// MockAccessChecker is a mock implementation of AccessChecker
type MockAccessChecker struct {
	mock.Mock
}

func (m *MockAccessChecker) CanAccess(ctx context.Context, userID, storeID uuid.UUID, requiredRoles ...models.UserRole) bool {
	args := m.Called(ctx, userID, storeID, requiredRoles)
	return args.Bool(0)
}

// MockLimitChecker is a mock implementation of LimitChecker
type MockLimitChecker struct {
	mock.Mock
}

func (m *MockLimitChecker) CheckLimit(ctx context.Context, storeID uuid.UUID, resource models.LimitResource) (*models.LimitCheck, error) {
	args := m.Called(ctx, storeID, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LimitCheck), args.Error(1)
}
