package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// ProductRepository exposes the product counts plan limits depend on
type ProductRepository interface {
	CountActiveByStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// CountActiveByStore counts a store's active products
func (r *productRepository) CountActiveByStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Count(&count).Error
	return count, err
}
