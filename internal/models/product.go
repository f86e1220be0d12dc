package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is only modelled as far as plan limits need it: products are counted
// per store, catalog management lives elsewhere.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index:idx_products_store_active" json:"storeId"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive  bool      `gorm:"not null;default:true;index:idx_products_store_active" json:"isActive"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// BeforeCreate hook to set default ID
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
