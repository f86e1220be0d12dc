package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// SubscriptionRepository provides database operations for subscriptions
type SubscriptionRepository interface {
	GetByStoreID(ctx context.Context, storeID uuid.UUID) (*models.Subscription, error)
	Save(ctx context.Context, sub *models.Subscription) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByStoreID retrieves the subscription attached to a store
func (r *subscriptionRepository) GetByStoreID(ctx context.Context, storeID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "store_id = ?", storeID).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

// Save creates the subscription when it has no ID yet, otherwise updates it
func (r *subscriptionRepository) Save(ctx context.Context, sub *models.Subscription) error {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}
