package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/repository"
)

// AccessValidator decides whether a user may act on a store
type AccessValidator struct {
	users  repository.UserRepository
	stores repository.StoreRepository
	logger *logrus.Entry
}

// NewAccessValidator creates a new access validator
func NewAccessValidator(users repository.UserRepository, stores repository.StoreRepository, logger *logrus.Entry) *AccessValidator {
	return &AccessValidator{
		users:  users,
		stores: stores,
		logger: logger.WithField("component", "access_validator"),
	}
}

// CanAccess loads the user and store and evaluates access. Any lookup
// failure denies.
func (v *AccessValidator) CanAccess(ctx context.Context, userID, storeID uuid.UUID, requiredRoles ...models.UserRole) bool {
	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		v.logger.WithError(err).WithField("user_id", userID).Debug("access denied: user lookup failed")
		return false
	}

	store, err := v.stores.GetByID(ctx, storeID)
	if err != nil {
		v.logger.WithError(err).WithField("store_id", storeID).Debug("access denied: store lookup failed")
		return false
	}

	return EvaluateAccess(user, store, requiredRoles)
}

// EvaluateAccess is the access predicate: the user owns the store or holds an
// elevated role, an inactive store is visible only to SUPER_ADMIN, and when
// roles are required the user's role is one of them.
func EvaluateAccess(user *models.User, store *models.Store, requiredRoles []models.UserRole) bool {
	if user == nil || store == nil {
		return false
	}

	if store.OwnerID != user.ID && !user.Role.IsElevated() {
		return false
	}

	if !store.IsActive && user.Role != models.RoleSuperAdmin {
		return false
	}

	if len(requiredRoles) == 0 {
		return true
	}
	for _, role := range requiredRoles {
		if user.Role == role {
			return true
		}
	}
	return false
}
