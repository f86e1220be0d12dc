package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// NotificationRepository provides database operations for in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ExistsSince(ctx context.Context, userID uuid.UUID, kind models.NotificationType, since time.Time) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create stores a notification
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ExistsSince reports whether the user already received a notification of the kind since the given time
func (r *notificationRepository) ExistsSince(ctx context.Context, userID uuid.UUID, kind models.NotificationType, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, kind, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
