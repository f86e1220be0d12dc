package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole is the platform-wide role of a user
type UserRole string

const (
	RoleStoreOwner UserRole = "STORE_OWNER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// IsElevated reports whether the role overrides store ownership checks
func (r UserRole) IsElevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User is a platform account. A store owner owns at most one store and holds at
// most one subscription.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name         string     `gorm:"type:varchar(255)" json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'STORE_OWNER';index" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	TrialEndDate time.Time  `gorm:"not null;index" json:"trialEndDate"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Subscription *Subscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
	Store        *Store        `gorm:"foreignKey:OwnerID" json:"store,omitempty"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to set default ID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasActiveSubscription reports whether the user has converted to a paid plan
func (u *User) HasActiveSubscription() bool {
	return u.Subscription != nil && u.Subscription.Status == SubscriptionActive
}

// EffectivePlan is FREE unless the user's subscription is ACTIVE
func (u *User) EffectivePlan() PlanTier {
	if u.HasActiveSubscription() {
		return u.Subscription.Plan
	}
	return PlanFree
}
