package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/metrics"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	publishTimeout   = 5 * time.Second

	defaultSummaryWindow = 24 * time.Hour
	maxSummaryWindow     = 90 * 24 * time.Hour
)

// ActivityPublisher streams stored audit entries to subscribers
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, entry *models.AdminActivityLog) error
}

// ActivityEntry describes one administrative mutation to record
type ActivityEntry struct {
	AdminID     uuid.UUID
	Action      models.AdminAction
	TargetType  models.TargetType
	TargetID    string
	Description string
	Metadata    map[string]interface{}
	IPAddress   string
	UserAgent   string
}

// RequestMeta carries the caller's network identity into audit entries
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// ActivityLogService records and queries the admin audit trail
type ActivityLogService struct {
	repo      repository.ActivityLogRepository
	publisher ActivityPublisher
	metrics   *metrics.Metrics
	logger    *logrus.Entry
	now       func() time.Time
}

// NewActivityLogService creates a new activity log service. publisher may be nil.
func NewActivityLogService(
	repo repository.ActivityLogRepository,
	publisher ActivityPublisher,
	m *metrics.Metrics,
	logger *logrus.Entry,
) *ActivityLogService {
	return &ActivityLogService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithField("component", "activity_log"),
		now:       time.Now,
	}
}

// Record appends an audit entry. Failures are logged and discarded so the
// action being audited is never blocked by the audit trail.
func (s *ActivityLogService) Record(ctx context.Context, entry ActivityEntry) {
	log := s.logger.WithFields(logrus.Fields{
		"admin_id":    entry.AdminID,
		"action":      entry.Action,
		"target_type": entry.TargetType,
		"target_id":   entry.TargetID,
	})

	if !entry.Action.IsValid() || !entry.TargetType.IsValid() {
		log.Error("discarding audit entry with unknown action or target type")
		s.metrics.RecordAuditWriteFailure(string(entry.Action))
		return
	}

	record := &models.AdminActivityLog{
		AdminID:     entry.AdminID,
		Action:      entry.Action,
		TargetType:  entry.TargetType,
		TargetID:    entry.TargetID,
		Description: entry.Description,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
	}
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			log.WithError(err).Warn("audit metadata not serializable, storing entry without it")
		} else {
			record.Metadata = datatypes.JSON(data)
		}
	}

	if err := s.repo.Create(ctx, record); err != nil {
		log.WithError(err).Error("failed to write audit entry")
		s.metrics.RecordAuditWriteFailure(string(entry.Action))
		return
	}

	if s.publisher != nil {
		go s.publish(record)
	}
}

func (s *ActivityLogService) publish(record *models.AdminActivityLog) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishActivity(ctx, record); err != nil {
		s.logger.WithError(err).WithField("log_id", record.ID).Warn("failed to publish activity event")
	}
}

// Query returns one page of entries, newest first. The limit defaults to 20
// and is capped at 100.
func (s *ActivityLogService) Query(ctx context.Context, page, limit int, filter models.ActivityLogFilter) (*models.ActivityLogPage, error) {
	page, limit = normalizePage(page, limit)

	logs, total, err := s.repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.AdminActivityLog{}
	}

	return &models.ActivityLogPage{
		Logs:       logs,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// CountActions counts entries of one action kind recorded against a target
func (s *ActivityLogService) CountActions(ctx context.Context, action models.AdminAction, targetType models.TargetType, targetID string) (int64, error) {
	return s.repo.CountActions(ctx, action, targetType, targetID, nil)
}

// Summary aggregates entries recorded in the trailing window. A non-positive
// window means the last 24 hours; windows beyond 90 days are rejected.
func (s *ActivityLogService) Summary(ctx context.Context, window time.Duration) (*models.ActivitySummary, error) {
	if window <= 0 {
		window = defaultSummaryWindow
	}
	if window > maxSummaryWindow {
		return nil, NewValidationError("window", "must not exceed 90 days")
	}

	to := s.now()
	summary, err := s.repo.Summarize(ctx, to.Add(-window), to)
	if err != nil {
		return nil, err
	}
	if summary.Total > 0 {
		summary.ErrorRate = float64(summary.ByAction[models.ActionSystemError]) / float64(summary.Total)
	}
	return summary, nil
}
