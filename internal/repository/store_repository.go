package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// StoreRepository provides database operations for stores
type StoreRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Store, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository instance
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// GetByID retrieves a store by its ID
func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &store, nil
}

// GetBySubdomain retrieves a store by exact subdomain match
func (r *storeRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("subdomain = ?", strings.ToLower(subdomain)).
		First(&store).Error
	if err != nil {
		return nil, translate(err)
	}
	return &store, nil
}

// SetActive flips the store's active flag
func (r *storeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update store status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
