package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAction is the closed set of administrative actions that are audited
type AdminAction string

const (
	// User management
	ActionUserCreated     AdminAction = "USER_CREATED"
	ActionUserUpdated     AdminAction = "USER_UPDATED"
	ActionUserActivated   AdminAction = "USER_ACTIVATED"
	ActionUserDeactivated AdminAction = "USER_DEACTIVATED"

	// Store management
	ActionStoreActivated   AdminAction = "STORE_ACTIVATED"
	ActionStoreDeactivated AdminAction = "STORE_DEACTIVATED"
	ActionStoreVerified    AdminAction = "STORE_VERIFIED"

	// Trial lifecycle
	ActionTrialExtended     AdminAction = "TRIAL_EXTENDED"
	ActionTrialEnded        AdminAction = "TRIAL_ENDED"
	ActionTrialConverted    AdminAction = "TRIAL_CONVERTED"
	ActionTrialReminderSent AdminAction = "TRIAL_REMINDER_SENT"

	// Subscriptions
	ActionSubscriptionUpdated AdminAction = "SUBSCRIPTION_UPDATED"

	// Platform
	ActionNotificationSent AdminAction = "NOTIFICATION_SENT"
	ActionSettingsUpdated  AdminAction = "SYSTEM_SETTINGS_UPDATED"
	ActionSystemError      AdminAction = "SYSTEM_ERROR"
)

var adminActions = map[AdminAction]struct{}{
	ActionUserCreated: {}, ActionUserUpdated: {}, ActionUserActivated: {}, ActionUserDeactivated: {},
	ActionStoreActivated: {}, ActionStoreDeactivated: {}, ActionStoreVerified: {},
	ActionTrialExtended: {}, ActionTrialEnded: {}, ActionTrialConverted: {}, ActionTrialReminderSent: {},
	ActionSubscriptionUpdated: {}, ActionNotificationSent: {}, ActionSettingsUpdated: {}, ActionSystemError: {},
}

// IsValid reports whether the action belongs to the audited set
func (a AdminAction) IsValid() bool {
	_, ok := adminActions[a]
	return ok
}

// TargetType names the kind of entity an audit entry points at. The target id
// is not a foreign key; it is interpreted according to the type.
type TargetType string

const (
	TargetUser         TargetType = "USER"
	TargetStore        TargetType = "STORE"
	TargetSubscription TargetType = "SUBSCRIPTION"
	TargetNotification TargetType = "NOTIFICATION"
	TargetSystem       TargetType = "SYSTEM"
)

// IsValid reports whether the target type is one of the known kinds
func (t TargetType) IsValid() bool {
	switch t {
	case TargetUser, TargetStore, TargetSubscription, TargetNotification, TargetSystem:
		return true
	}
	return false
}

// AdminActivityLog is an append-only record of a privileged mutation.
// Rows are never updated or deleted.
type AdminActivityLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AdminID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"adminId"`
	Action      AdminAction    `gorm:"type:varchar(50);not null;index" json:"action"`
	TargetType  TargetType     `gorm:"type:varchar(30);not null;index:idx_admin_activity_target" json:"targetType"`
	TargetID    string         `gorm:"type:varchar(255);index:idx_admin_activity_target" json:"targetId"`
	Description string         `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ipAddress,omitempty"`
	UserAgent   string         `gorm:"type:text" json:"userAgent,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"createdAt"`
}

// TableName specifies the table name
func (AdminActivityLog) TableName() string {
	return "admin_activity_logs"
}

// BeforeCreate hook to set ID and timestamp
func (a *AdminActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

// ActivityLogFilter narrows an activity log query. Zero values are ignored.
type ActivityLogFilter struct {
	AdminID    *uuid.UUID  `json:"adminId,omitempty"`
	Action     AdminAction `json:"action,omitempty"`
	TargetType TargetType  `json:"targetType,omitempty"`
	TargetID   string      `json:"targetId,omitempty"`
	DateFrom   *time.Time  `json:"dateFrom,omitempty"`
	DateTo     *time.Time  `json:"dateTo,omitempty"`
}

// Pagination describes a page of results
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes the page count for a total
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// ActivityLogPage is one page of audit entries, newest first
type ActivityLogPage struct {
	Logs       []AdminActivityLog `json:"logs"`
	Pagination Pagination         `json:"pagination"`
}

// ActivitySummary aggregates audit entries over a time window. ErrorRate is
// the share of SYSTEM_ERROR entries among all entries in the window.
type ActivitySummary struct {
	From         time.Time             `json:"from"`
	To           time.Time             `json:"to"`
	Total        int64                 `json:"total"`
	ByAction     map[AdminAction]int64 `json:"byAction"`
	ByTargetType map[TargetType]int64  `json:"byTargetType"`
	ErrorRate    float64               `json:"errorRate"`
}
