package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/repository"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

// memoryDB is an in-memory stand-in for the relational store
type memoryDB struct {
	mu            sync.Mutex
	users         map[uuid.UUID]models.User
	stores        map[uuid.UUID]models.Store
	subscriptions map[uuid.UUID]models.Subscription
	activeProds   map[uuid.UUID]int64
	notifications []models.Notification
	logs          []models.AdminActivityLog
	saves         int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		users:         map[uuid.UUID]models.User{},
		stores:        map[uuid.UUID]models.Store{},
		subscriptions: map[uuid.UUID]models.Subscription{},
		activeProds:   map[uuid.UUID]int64{},
	}
}

func (m *memoryDB) addUser(role models.UserRole, trialEnd time.Time) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString()[:8] + "@example.com",
		Name:         "Test User",
		Role:         role,
		IsActive:     true,
		TrialEndDate: trialEnd,
	}
	m.users[u.ID] = u
	return u
}

func (m *memoryDB) addStore(owner uuid.UUID, subdomain string, active bool) models.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := models.Store{
		ID:        uuid.New(),
		Name:      strings.ToUpper(subdomain[:1]) + subdomain[1:],
		Subdomain: subdomain,
		OwnerID:   owner,
		IsActive:  active,
	}
	m.stores[s.ID] = s
	return s
}

func (m *memoryDB) addSubscription(sub models.Subscription) models.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	m.subscriptions[sub.ID] = sub
	return sub
}

func (m *memoryDB) user(id uuid.UUID) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *memoryDB) subscriptionFor(userID uuid.UUID) *models.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscriptionForLocked(userID)
}

func (m *memoryDB) subscriptionForLocked(userID uuid.UUID) *models.Subscription {
	for _, s := range m.subscriptions {
		if s.UserID == userID {
			sub := s
			return &sub
		}
	}
	return nil
}

func (m *memoryDB) logsFor(action models.AdminAction) []models.AdminActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AdminActivityLog
	for _, l := range m.logs {
		if l.Action == action {
			out = append(out, l)
		}
	}
	return out
}

func (m *memoryDB) notificationsFor(userID uuid.UUID) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeUserRepo struct{ db *memoryDB }

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, s := range r.db.stores {
		if s.OwnerID == id {
			store := s
			u.Store = &store
		}
	}
	u.Subscription = r.db.subscriptionForLocked(id)
	return &u, nil
}

func (r *fakeUserRepo) UpdateTrialEndDate(ctx context.Context, id uuid.UUID, end time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TrialEndDate = end
	r.db.users[id] = u
	for sid, s := range r.db.subscriptions {
		if s.UserID == id && s.Status != models.SubscriptionActive {
			e := end
			s.TrialEndDate = &e
			r.db.subscriptions[sid] = s
		}
	}
	return nil
}

func (r *fakeUserRepo) ListTrialUsers(ctx context.Context, filter repository.TrialListFilter, limit, offset int) ([]models.User, int64, error) {
	var out []models.User
	for id := range r.db.users {
		u, _ := r.GetByID(ctx, id)
		if u.Role == models.RoleStoreOwner {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ListExpiringTrials(ctx context.Context, from, to time.Time) ([]models.User, error) {
	var out []models.User
	for id := range r.db.users {
		u, _ := r.GetByID(ctx, id)
		if u.Role != models.RoleStoreOwner || u.HasActiveSubscription() {
			continue
		}
		if u.TrialEndDate.After(from) && !u.TrialEndDate.After(to) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountTrialStates(ctx context.Context, now, soon time.Time) (*models.TrialStats, error) {
	return &models.TrialStats{}, nil
}

type fakeStoreRepo struct{ db *memoryDB }

func (r *fakeStoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.stores[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeStoreRepo) GetBySubdomain(ctx context.Context, subdomain string) (*models.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.stores {
		if s.Subdomain == strings.ToLower(subdomain) {
			store := s
			return &store, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStoreRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.stores[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = active
	r.db.stores[id] = s
	return nil
}

type fakeSubscriptionRepo struct{ db *memoryDB }

func (r *fakeSubscriptionRepo) GetByStoreID(ctx context.Context, storeID uuid.UUID) (*models.Subscription, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.subscriptions {
		if s.StoreID == storeID {
			sub := s
			return &sub, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSubscriptionRepo) Save(ctx context.Context, sub *models.Subscription) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	r.db.subscriptions[sub.ID] = *sub
	r.db.saves++
	return nil
}

type fakeProductRepo struct {
	db  *memoryDB
	err error
}

func (r *fakeProductRepo) CountActiveByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.activeProds[storeID], nil
}

type fakeNotificationRepo struct{ db *memoryDB }

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = testNow
	}
	r.db.notifications = append(r.db.notifications, *n)
	return nil
}

func (r *fakeNotificationRepo) ExistsSince(ctx context.Context, userID uuid.UUID, kind models.NotificationType, since time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range r.db.notifications {
		if n.UserID == userID && n.Type == kind && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeActivityRepo struct{ db *memoryDB }

func (r *fakeActivityRepo) Create(ctx context.Context, entry *models.AdminActivityLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.db.logs = append(r.db.logs, *entry)
	return nil
}

func (r *fakeActivityRepo) List(ctx context.Context, filter models.ActivityLogFilter, limit, offset int) ([]models.AdminActivityLog, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]models.AdminActivityLog(nil), r.db.logs...), int64(len(r.db.logs)), nil
}

func (r *fakeActivityRepo) CountActions(ctx context.Context, action models.AdminAction, targetType models.TargetType, targetID string, since *time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, l := range r.db.logs {
		if l.Action == action && l.TargetType == targetType && l.TargetID == targetID {
			n++
		}
	}
	return n, nil
}

func (r *fakeActivityRepo) Summarize(ctx context.Context, from, to time.Time) (*models.ActivitySummary, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	summary := &models.ActivitySummary{
		From:         from,
		To:           to,
		ByAction:     make(map[models.AdminAction]int64),
		ByTargetType: make(map[models.TargetType]int64),
	}
	for _, l := range r.db.logs {
		summary.ByAction[l.Action]++
		summary.ByTargetType[l.TargetType]++
		summary.Total++
	}
	return summary, nil
}

// MockActivityLogRepository is a mock implementation of ActivityLogRepository
type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Create(ctx context.Context, entry *models.AdminActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityLogRepository) List(ctx context.Context, filter models.ActivityLogFilter, limit, offset int) ([]models.AdminActivityLog, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.AdminActivityLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityLogRepository) CountActions(ctx context.Context, action models.AdminAction, targetType models.TargetType, targetID string, since *time.Time) (int64, error) {
	args := m.Called(ctx, action, targetType, targetID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActivityLogRepository) Summarize(ctx context.Context, from, to time.Time) (*models.ActivitySummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivitySummary), args.Error(1)
}

// MockActivityPublisher is a mock implementation of ActivityPublisher
type MockActivityPublisher struct {
	mock.Mock
}

func (m *MockActivityPublisher) PublishActivity(ctx context.Context, entry *models.AdminActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type fixture struct {
	db       *memoryDB
	users    *fakeUserRepo
	stores   *fakeStoreRepo
	subs     *fakeSubscriptionRepo
	products *fakeProductRepo
	activity *ActivityLogService
	trials   *TrialService
	access   *AccessValidator
}

func newFixture() *fixture {
	db := newMemoryDB()
	f := &fixture{
		db:       db,
		users:    &fakeUserRepo{db: db},
		stores:   &fakeStoreRepo{db: db},
		subs:     &fakeSubscriptionRepo{db: db},
		products: &fakeProductRepo{db: db},
	}
	f.activity = NewActivityLogService(&fakeActivityRepo{db: db}, nil, nil, testLogger())
	f.trials = NewTrialService(f.users, f.subs, &fakeNotificationRepo{db: db}, f.activity, 7, nil, testLogger())
	f.trials.now = fixedClock
	f.access = NewAccessValidator(f.users, f.stores, testLogger())
	return f
}
