package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionStatus captures the lifecycle of a subscription
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "TRIAL"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionPastDue   SubscriptionStatus = "PAST_DUE"
)

// Subscription is the billing state of a user and their store.
// A user has at most one subscription row.
type Subscription struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	StoreID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"storeId"`
	Plan         PlanTier           `gorm:"type:varchar(20);not null;default:'FREE'" json:"plan"`
	Status       SubscriptionStatus `gorm:"type:varchar(20);not null;default:'TRIAL';index" json:"status"`
	Price        decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	MaxProducts  int                `gorm:"not null;default:0" json:"maxProducts"`
	MaxStorage   int64              `gorm:"not null;default:0" json:"maxStorage"` // bytes
	StartDate    time.Time          `gorm:"not null" json:"startDate"`
	EndDate      *time.Time         `json:"endDate,omitempty"`
	TrialEndDate *time.Time         `json:"trialEndDate,omitempty"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Subscription) TableName() string {
	return "subscriptions"
}

// BeforeCreate hook to set default ID
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the subscription is paid and current
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive
}

// ApplyPlan activates the subscription on the given plan for one month from now
func (s *Subscription) ApplyPlan(def PlanDefinition, now time.Time) {
	end := now.AddDate(0, 1, 0)
	s.Plan = def.Tier
	s.Status = SubscriptionActive
	s.Price = def.Price
	s.MaxProducts = def.MaxProducts
	s.MaxStorage = def.MaxStorage
	s.StartDate = now
	s.EndDate = &end
}
