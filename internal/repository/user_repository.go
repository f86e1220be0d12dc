package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// Trial list status filters
const (
	TrialFilterActive    = "active"
	TrialFilterExpiring  = "expiring"
	TrialFilterExpired   = "expired"
	TrialFilterConverted = "converted"
)

const activeSubscriptionExists = "EXISTS (SELECT 1 FROM subscriptions s WHERE s.user_id = users.id AND s.status = 'ACTIVE')"

// TrialListFilter narrows the trial user listing. Now and Soon bound the
// active and expiring-soon windows.
type TrialListFilter struct {
	Status string
	Now    time.Time
	Soon   time.Time
}

// UserRepository provides database operations for users and their trials
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateTrialEndDate(ctx context.Context, id uuid.UUID, end time.Time) error
	ListTrialUsers(ctx context.Context, filter TrialListFilter, limit, offset int) ([]models.User, int64, error)
	ListExpiringTrials(ctx context.Context, from, to time.Time) ([]models.User, error)
	CountTrialStates(ctx context.Context, now, soon time.Time) (*models.TrialStats, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user with their store and subscription
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Store").
		Preload("Subscription").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UpdateTrialEndDate moves the user's trial end and mirrors it onto a
// non-active subscription row when one exists
func (r *userRepository) UpdateTrialEndDate(ctx context.Context, id uuid.UUID, end time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).Where("id = ?", id).Update("trial_end_date", end)
		if result.Error != nil {
			return fmt.Errorf("failed to update trial end date: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND status <> ?", id, models.SubscriptionActive).
			Update("trial_end_date", end).Error
		if err != nil {
			return fmt.Errorf("failed to sync subscription trial end date: %w", err)
		}
		return nil
	})
}

// ListTrialUsers lists store owners by trial state, soonest expiry first
func (r *userRepository) ListTrialUsers(ctx context.Context, filter TrialListFilter, limit, offset int) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("users.role = ?", models.RoleStoreOwner)
	query = applyTrialFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trial users: %w", err)
	}

	var users []models.User
	err := query.
		Preload("Store").
		Preload("Subscription").
		Order("users.trial_end_date ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trial users: %w", err)
	}

	return users, total, nil
}

// ListExpiringTrials returns unconverted store owners whose trial ends in (from, to]
func (r *userRepository) ListExpiringTrials(ctx context.Context, from, to time.Time) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("users.role = ? AND users.is_active = ?", models.RoleStoreOwner, true).
		Where("users.trial_end_date > ? AND users.trial_end_date <= ?", from, to).
		Where("NOT " + activeSubscriptionExists).
		Order("users.trial_end_date ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring trials: %w", err)
	}
	return users, nil
}

// CountTrialStates counts store owners per trial state
func (r *userRepository) CountTrialStates(ctx context.Context, now, soon time.Time) (*models.TrialStats, error) {
	stats := &models.TrialStats{}
	counts := []struct {
		status string
		dest   *int64
	}{
		{TrialFilterActive, &stats.Active},
		{TrialFilterExpiring, &stats.ExpiringSoon},
		{TrialFilterExpired, &stats.Expired},
		{TrialFilterConverted, &stats.Converted},
	}

	for _, c := range counts {
		query := r.db.WithContext(ctx).Model(&models.User{}).Where("users.role = ?", models.RoleStoreOwner)
		query = applyTrialFilter(query, TrialListFilter{Status: c.status, Now: now, Soon: soon})
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s trials: %w", c.status, err)
		}
	}

	return stats, nil
}

func applyTrialFilter(query *gorm.DB, filter TrialListFilter) *gorm.DB {
	switch filter.Status {
	case TrialFilterActive:
		query = query.Where("users.trial_end_date > ?", filter.Now).Where("NOT " + activeSubscriptionExists)
	case TrialFilterExpiring:
		query = query.Where("users.trial_end_date > ? AND users.trial_end_date <= ?", filter.Now, filter.Soon).
			Where("NOT " + activeSubscriptionExists)
	case TrialFilterExpired:
		query = query.Where("users.trial_end_date <= ?", filter.Now).Where("NOT " + activeSubscriptionExists)
	case TrialFilterConverted:
		query = query.Where(activeSubscriptionExists)
	}
	return query
}
