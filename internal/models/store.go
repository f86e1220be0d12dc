package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a tenant: the unit of data isolation. Stores are deactivated, never
// hard-deleted.
type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Subdomain   string    `gorm:"type:varchar(63);not null;uniqueIndex" json:"subdomain"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"ownerId"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"isActive"`
	IsVerified  bool      `gorm:"not null;default:false" json:"isVerified"`
	StorageUsed int64     `gorm:"not null;default:0" json:"storageUsed"` // bytes
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Subscription *Subscription `gorm:"foreignKey:StoreID" json:"subscription,omitempty"`
}

// TableName specifies the table name
func (Store) TableName() string {
	return "stores"
}

// BeforeCreate hook to set default ID
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Snapshot returns the identity fields carried in a tenant context
func (s *Store) Snapshot() StoreSnapshot {
	return StoreSnapshot{
		ID:         s.ID,
		Name:       s.Name,
		Subdomain:  s.Subdomain,
		OwnerID:    s.OwnerID,
		IsActive:   s.IsActive,
		IsVerified: s.IsVerified,
	}
}
