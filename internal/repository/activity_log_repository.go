package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// ActivityLogRepository provides append and query operations for the admin audit trail
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.AdminActivityLog) error
	List(ctx context.Context, filter models.ActivityLogFilter, limit, offset int) ([]models.AdminActivityLog, int64, error)
	CountActions(ctx context.Context, action models.AdminAction, targetType models.TargetType, targetID string, since *time.Time) (int64, error)
	Summarize(ctx context.Context, from, to time.Time) (*models.ActivitySummary, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository instance
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

// Create appends an entry. Entries are never updated.
func (r *activityLogRepository) Create(ctx context.Context, entry *models.AdminActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns one page of entries matching the filter, newest first
func (r *activityLogRepository) List(ctx context.Context, filter models.ActivityLogFilter, limit, offset int) ([]models.AdminActivityLog, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.AdminActivityLog{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	var logs []models.AdminActivityLog
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return logs, total, nil
}

// CountActions counts entries of one action kind against a target, optionally
// restricted to entries created at or after since
func (r *activityLogRepository) CountActions(ctx context.Context, action models.AdminAction, targetType models.TargetType, targetID string, since *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AdminActivityLog{}).
		Where("action = ? AND target_type = ? AND target_id = ?", action, targetType, targetID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count activity logs: %w", err)
	}
	return count, nil
}

// Summarize counts entries per action and per target type created within [from, to]
func (r *activityLogRepository) Summarize(ctx context.Context, from, to time.Time) (*models.ActivitySummary, error) {
	summary := &models.ActivitySummary{
		From:         from,
		To:           to,
		ByAction:     make(map[models.AdminAction]int64),
		ByTargetType: make(map[models.TargetType]int64),
	}

	var actionCounts []struct {
		Action models.AdminAction
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.AdminActivityLog{}).
		Select("action, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("action").
		Find(&actionCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize activity by action: %w", err)
	}
	for _, ac := range actionCounts {
		summary.ByAction[ac.Action] = ac.Count
		summary.Total += ac.Count
	}

	var targetCounts []struct {
		TargetType models.TargetType
		Count      int64
	}
	if err := r.db.WithContext(ctx).Model(&models.AdminActivityLog{}).
		Select("target_type, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("target_type").
		Find(&targetCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize activity by target: %w", err)
	}
	for _, tc := range targetCounts {
		summary.ByTargetType[tc.TargetType] = tc.Count
	}

	return summary, nil
}

func (r *activityLogRepository) applyFilters(query *gorm.DB, filter models.ActivityLogFilter) *gorm.DB {
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}
	return query
}
