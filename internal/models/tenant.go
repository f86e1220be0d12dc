package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreSnapshot is the store identity carried with a resolved request
type StoreSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Subdomain  string    `json:"subdomain"`
	OwnerID    uuid.UUID `json:"ownerId"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
}

// ResolutionSource records how a tenant context was obtained
type ResolutionSource string

const (
	SourceSubdomain ResolutionSource = "subdomain"
	SourceToken     ResolutionSource = "token"
)

// TenantContext is built fresh for each request and never persisted
type TenantContext struct {
	StoreID  uuid.UUID        `json:"storeId"`
	UserID   uuid.UUID        `json:"userId"`
	UserRole UserRole         `json:"userRole"`
	Store    StoreSnapshot    `json:"store"`
	Source   ResolutionSource `json:"source"`
}

// TrialState is the derived state of a user's trial
type TrialState string

const (
	TrialActive    TrialState = "TRIAL_ACTIVE"
	TrialExpired   TrialState = "TRIAL_EXPIRED"
	TrialConverted TrialState = "CONVERTED"
)

// TrialStatus is a point-in-time view of a user's trial. ExpiringSoon is
// informational and only set while the trial is active.
type TrialStatus struct {
	UserID        uuid.UUID  `json:"userId"`
	State         TrialState `json:"state"`
	TrialEndDate  time.Time  `json:"trialEndDate"`
	DaysRemaining int        `json:"daysRemaining"`
	ExpiringSoon  bool       `json:"expiringSoon"`
	Plan          PlanTier   `json:"plan"`
}

// TrialDetails adds audit-derived signals to a trial status
type TrialDetails struct {
	TrialStatus
	Email          string `json:"email"`
	Name           string `json:"name"`
	StoreName      string `json:"storeName,omitempty"`
	Subdomain      string `json:"subdomain,omitempty"`
	ExtensionCount int64  `json:"extensionCount"`
}

// TrialListPage is one page of trial users
type TrialListPage struct {
	Trials     []TrialStatus `json:"trials"`
	Pagination Pagination    `json:"pagination"`
}

// TrialStats counts users per trial state
type TrialStats struct {
	Active       int64 `json:"active"`
	ExpiringSoon int64 `json:"expiringSoon"`
	Expired      int64 `json:"expired"`
	Converted    int64 `json:"converted"`
}

// LimitResource names a plan-limited resource
type LimitResource string

const (
	ResourceProducts LimitResource = "products"
	ResourceStorage  LimitResource = "storage"
)

// LimitCheck is the outcome of comparing usage against a plan ceiling
type LimitCheck struct {
	Allowed bool  `json:"allowed"`
	Limit   int64 `json:"limit"`
	Current int64 `json:"current"`
}
