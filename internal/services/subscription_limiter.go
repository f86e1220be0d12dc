package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/metrics"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/repository"
)

// SubscriptionLimiter compares a store's usage with its plan ceilings.
// The check is advisory: it does not reserve capacity, so concurrent creates
// can pass the same check.
type SubscriptionLimiter struct {
	subscriptions repository.SubscriptionRepository
	products      repository.ProductRepository
	stores        repository.StoreRepository
	metrics       *metrics.Metrics
}

// NewSubscriptionLimiter creates a new subscription limiter
func NewSubscriptionLimiter(
	subscriptions repository.SubscriptionRepository,
	products repository.ProductRepository,
	stores repository.StoreRepository,
	m *metrics.Metrics,
) *SubscriptionLimiter {
	return &SubscriptionLimiter{
		subscriptions: subscriptions,
		products:      products,
		stores:        stores,
		metrics:       m,
	}
}

// CheckLimit reports whether the store may add one more unit of resource.
// A store without a subscription is always denied with zero limit and usage.
func (l *SubscriptionLimiter) CheckLimit(ctx context.Context, storeID uuid.UUID, resource models.LimitResource) (*models.LimitCheck, error) {
	if resource != models.ResourceProducts && resource != models.ResourceStorage {
		return nil, NewValidationError("resource", fmt.Sprintf("unknown resource %q", resource))
	}

	sub, err := l.subscriptions.GetByStoreID(ctx, storeID)
	if errors.Is(err, repository.ErrNotFound) {
		l.metrics.RecordLimitCheck(string(resource), false)
		return &models.LimitCheck{Allowed: false, Limit: 0, Current: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	var check models.LimitCheck
	switch resource {
	case models.ResourceProducts:
		count, err := l.products.CountActiveByStore(ctx, storeID)
		if err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		check = models.LimitCheck{Limit: int64(sub.MaxProducts), Current: count}
	case models.ResourceStorage:
		store, err := l.stores.GetByID(ctx, storeID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("store", storeID.String())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
		check = models.LimitCheck{Limit: sub.MaxStorage, Current: store.StorageUsed}
	}

	check.Allowed = check.Current < check.Limit
	l.metrics.RecordLimitCheck(string(resource), check.Allowed)
	return &check, nil
}
