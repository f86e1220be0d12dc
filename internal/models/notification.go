package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationTrialReminder         NotificationType = "TRIAL_REMINDER"
	NotificationTrialExtended         NotificationType = "TRIAL_EXTENDED"
	NotificationTrialEnded            NotificationType = "TRIAL_ENDED"
	NotificationSubscriptionActivated NotificationType = "SUBSCRIPTION_ACTIVATED"
	NotificationSystem                NotificationType = "SYSTEM"
)

// Notification is an in-app message shown on a user's dashboard
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_type" json:"userId"`
	Type      NotificationType `gorm:"type:varchar(40);not null;index:idx_notifications_user_type" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	IsRead    bool             `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time        `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate hook to set default ID
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
