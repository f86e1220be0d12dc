package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/metrics"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/repository"
)

const (
	day = 24 * time.Hour

	// reminderCooldown keeps the sweep from reminding a user twice in a day
	reminderCooldown = 24 * time.Hour

	// maxExtensionDays caps a single extension at ten years
	maxExtensionDays = 3650
)

// TrialService owns trial state transitions and the trial read side
type TrialService struct {
	users            repository.UserRepository
	subscriptions    repository.SubscriptionRepository
	notifications    repository.NotificationRepository
	activity         *ActivityLogService
	metrics          *metrics.Metrics
	logger           *logrus.Entry
	expiringSoonDays int
	now              func() time.Time
}

// NewTrialService creates a new trial service
func NewTrialService(
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	notifications repository.NotificationRepository,
	activity *ActivityLogService,
	expiringSoonDays int,
	m *metrics.Metrics,
	logger *logrus.Entry,
) *TrialService {
	return &TrialService{
		users:            users,
		subscriptions:    subscriptions,
		notifications:    notifications,
		activity:         activity,
		metrics:          m,
		logger:           logger.WithField("component", "trial_service"),
		expiringSoonDays: expiringSoonDays,
		now:              time.Now,
	}
}

// ComputeTrialStatus derives the trial state of a user at a point in time.
// An ACTIVE subscription wins over any trial end date.
func ComputeTrialStatus(user *models.User, now time.Time, expiringSoonDays int) models.TrialStatus {
	status := models.TrialStatus{
		UserID:       user.ID,
		TrialEndDate: user.TrialEndDate,
		Plan:         user.EffectivePlan(),
	}

	switch {
	case user.HasActiveSubscription():
		status.State = models.TrialConverted
	case user.TrialEndDate.After(now):
		remaining := user.TrialEndDate.Sub(now)
		status.State = models.TrialActive
		status.DaysRemaining = int(math.Ceil(remaining.Hours() / 24))
		status.ExpiringSoon = remaining <= time.Duration(expiringSoonDays)*day
	default:
		status.State = models.TrialExpired
	}

	return status
}

// Status returns the current trial status of a user
func (s *TrialService) Status(ctx context.Context, userID uuid.UUID) (*models.TrialStatus, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	status := ComputeTrialStatus(user, s.now(), s.expiringSoonDays)
	return &status, nil
}

// IsTrialExpired reports whether the user's trial is over and unconverted
func (s *TrialService) IsTrialExpired(ctx context.Context, userID uuid.UUID) (bool, error) {
	status, err := s.Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.State == models.TrialExpired, nil
}

// GetTrialDetails returns the status with profile fields and the number of
// recorded extensions
func (s *TrialService) GetTrialDetails(ctx context.Context, userID uuid.UUID) (*models.TrialDetails, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	extensions, err := s.activity.CountActions(ctx, models.ActionTrialExtended, models.TargetUser, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to count trial extensions: %w", err)
	}

	details := &models.TrialDetails{
		TrialStatus:    ComputeTrialStatus(user, s.now(), s.expiringSoonDays),
		Email:          user.Email,
		Name:           user.Name,
		ExtensionCount: extensions,
	}
	if user.Store != nil {
		details.StoreName = user.Store.Name
		details.Subdomain = user.Store.Subdomain
	}
	return details, nil
}

// ListTrials pages through store owners, optionally filtered by trial state
func (s *TrialService) ListTrials(ctx context.Context, page, limit int, status string) (*models.TrialListPage, error) {
	switch status {
	case "", repository.TrialFilterActive, repository.TrialFilterExpiring,
		repository.TrialFilterExpired, repository.TrialFilterConverted:
	default:
		return nil, NewValidationError("status", fmt.Sprintf("unknown trial status %q", status))
	}

	page, limit = normalizePage(page, limit)
	now := s.now()
	filter := repository.TrialListFilter{Status: status, Now: now, Soon: now.Add(s.expiringSoonWindow())}

	users, total, err := s.users.ListTrialUsers(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	trials := make([]models.TrialStatus, 0, len(users))
	for i := range users {
		trials = append(trials, ComputeTrialStatus(&users[i], now, s.expiringSoonDays))
	}

	return &models.TrialListPage{
		Trials:     trials,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// Stats counts store owners per trial state
func (s *TrialService) Stats(ctx context.Context) (*models.TrialStats, error) {
	now := s.now()
	return s.users.CountTrialStates(ctx, now, now.Add(s.expiringSoonWindow()))
}

// Extend pushes the trial end forward by additionalDays, measured from the
// stored end date rather than from now
func (s *TrialService) Extend(ctx context.Context, adminID, userID uuid.UUID, additionalDays int, reason string, meta RequestMeta) (*ActionResult, error) {
	result, err := s.extend(ctx, adminID, userID, additionalDays, reason, meta)
	s.recordOutcome(models.TrialActionExtend, result, err)
	return result, err
}

func (s *TrialService) extend(ctx context.Context, adminID, userID uuid.UUID, additionalDays int, reason string, meta RequestMeta) (*ActionResult, error) {
	if additionalDays <= 0 {
		return rejected(CodeInvalidInput, "additional days must be a positive number"), nil
	}
	if additionalDays > maxExtensionDays {
		return rejected(CodeInvalidInput, fmt.Sprintf("additional days must not exceed %d", maxExtensionDays)), nil
	}

	user, result, err := s.userForAction(ctx, userID)
	if user == nil {
		return result, err
	}
	if user.HasActiveSubscription() {
		return rejected(CodeInvalidState, "cannot extend trial for a user with an active subscription"), nil
	}

	oldEnd := user.TrialEndDate
	newEnd := oldEnd.AddDate(0, 0, additionalDays)
	if err := s.users.UpdateTrialEndDate(ctx, userID, newEnd); err != nil {
		return nil, fmt.Errorf("failed to extend trial: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:     adminID,
		Action:      models.ActionTrialExtended,
		TargetType:  models.TargetUser,
		TargetID:    userID.String(),
		Description: fmt.Sprintf("Extended trial for %s by %d days", user.Email, additionalDays),
		Metadata: map[string]interface{}{
			"oldTrialEndDate": oldEnd,
			"newTrialEndDate": newEnd,
			"additionalDays":  additionalDays,
			"reason":          reason,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	s.notify(ctx, userID, models.NotificationTrialExtended, "Your trial has been extended",
		fmt.Sprintf("Your trial now ends on %s.", newEnd.Format("January 2, 2006")))

	return succeeded(fmt.Sprintf("Trial extended by %d days", additionalDays), fields{
		"userId":          userID,
		"oldTrialEndDate": oldEnd,
		"newTrialEndDate": newEnd,
	}), nil
}

// ConvertToPaid activates a paid subscription on the given plan for one month
func (s *TrialService) ConvertToPaid(ctx context.Context, adminID, userID uuid.UUID, plan string, meta RequestMeta) (*ActionResult, error) {
	result, err := s.convertToPaid(ctx, adminID, userID, plan, meta)
	s.recordOutcome(models.TrialActionConvert, result, err)
	return result, err
}

func (s *TrialService) convertToPaid(ctx context.Context, adminID, userID uuid.UUID, plan string, meta RequestMeta) (*ActionResult, error) {
	def, ok := models.LookupPaidPlan(plan)
	if !ok {
		return rejected(CodeInvalidInput, fmt.Sprintf("invalid plan %q", plan)), nil
	}

	user, result, err := s.userForAction(ctx, userID)
	if user == nil {
		return result, err
	}
	if user.HasActiveSubscription() {
		return rejected(CodeInvalidState, "user already has an active subscription"), nil
	}

	sub := user.Subscription
	previousPlan, previousStatus := models.PlanFree, models.SubscriptionTrial
	if sub == nil {
		if user.Store == nil {
			return rejected(CodeInvalidState, "user has no store to attach a subscription to"), nil
		}
		trialEnd := user.TrialEndDate
		sub = &models.Subscription{
			UserID:       user.ID,
			StoreID:      user.Store.ID,
			TrialEndDate: &trialEnd,
		}
	} else {
		previousPlan, previousStatus = sub.Plan, sub.Status
	}

	sub.ApplyPlan(def, s.now())
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to convert trial: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:     adminID,
		Action:      models.ActionTrialConverted,
		TargetType:  models.TargetUser,
		TargetID:    userID.String(),
		Description: fmt.Sprintf("Converted %s to %s plan", user.Email, def.Tier),
		Metadata: map[string]interface{}{
			"subscriptionId": sub.ID,
			"plan":           def.Tier,
			"price":          def.Price.String(),
			"previousPlan":   previousPlan,
			"previousStatus": previousStatus,
			"startDate":      sub.StartDate,
			"endDate":        sub.EndDate,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	s.notify(ctx, userID, models.NotificationSubscriptionActivated, "Your subscription is active",
		fmt.Sprintf("Your store is now on the %s plan.", def.Tier))

	return succeeded(fmt.Sprintf("User converted to %s plan", def.Tier), sub), nil
}

// EndTrialEarly sets the trial end to now. It fails when the trial has
// already ended or the user has converted.
func (s *TrialService) EndTrialEarly(ctx context.Context, adminID, userID uuid.UUID, reason string, meta RequestMeta) (*ActionResult, error) {
	result, err := s.endTrialEarly(ctx, adminID, userID, reason, meta)
	s.recordOutcome(models.TrialActionEnd, result, err)
	return result, err
}

func (s *TrialService) endTrialEarly(ctx context.Context, adminID, userID uuid.UUID, reason string, meta RequestMeta) (*ActionResult, error) {
	user, result, err := s.userForAction(ctx, userID)
	if user == nil {
		return result, err
	}
	if user.HasActiveSubscription() {
		return rejected(CodeInvalidState, "cannot end trial for a user with an active subscription"), nil
	}

	now := s.now()
	if !user.TrialEndDate.After(now) {
		return rejected(CodeInvalidState, "trial already ended"), nil
	}

	oldEnd := user.TrialEndDate
	if err := s.users.UpdateTrialEndDate(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("failed to end trial: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:     adminID,
		Action:      models.ActionTrialEnded,
		TargetType:  models.TargetUser,
		TargetID:    userID.String(),
		Description: fmt.Sprintf("Ended trial early for %s", user.Email),
		Metadata: map[string]interface{}{
			"oldTrialEndDate": oldEnd,
			"newTrialEndDate": now,
			"reason":          reason,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	s.notify(ctx, userID, models.NotificationTrialEnded, "Your trial has ended",
		"Choose a plan to keep your store running.")

	return succeeded("Trial ended", fields{"userId": userID, "trialEndDate": now}), nil
}

// SendReminder notifies the user about their trial. It does not change trial
// state and is allowed for converted users, which is logged.
func (s *TrialService) SendReminder(ctx context.Context, adminID, userID uuid.UUID, meta RequestMeta) (*ActionResult, error) {
	result, err := s.sendReminder(ctx, adminID, userID, meta)
	s.recordOutcome(models.TrialActionSendReminder, result, err)
	return result, err
}

func (s *TrialService) sendReminder(ctx context.Context, adminID, userID uuid.UUID, meta RequestMeta) (*ActionResult, error) {
	user, result, err := s.userForAction(ctx, userID)
	if user == nil {
		return result, err
	}

	status := ComputeTrialStatus(user, s.now(), s.expiringSoonDays)
	if status.State == models.TrialConverted {
		s.logger.WithField("user_id", userID).Warn("sending trial reminder to a converted user")
	}

	message := "Your trial has ended. Choose a plan to keep your store running."
	if status.State == models.TrialActive {
		message = fmt.Sprintf("Your trial ends in %d days.", status.DaysRemaining)
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    models.NotificationTrialReminder,
		Title:   "Trial reminder",
		Message: message,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:     adminID,
		Action:      models.ActionTrialReminderSent,
		TargetType:  models.TargetUser,
		TargetID:    userID.String(),
		Description: fmt.Sprintf("Sent trial reminder to %s", user.Email),
		Metadata: map[string]interface{}{
			"notificationId": notification.ID,
			"state":          status.State,
			"daysRemaining":  status.DaysRemaining,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return succeeded("Reminder sent", notification), nil
}

// RemindExpiring sends a reminder to every unconverted user whose trial ends
// within the expiring-soon window and who was not reminded in the last day.
// It returns the number of reminders sent.
func (s *TrialService) RemindExpiring(ctx context.Context) (int, error) {
	now := s.now()
	users, err := s.users.ListExpiringTrials(ctx, now, now.Add(s.expiringSoonWindow()))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		log := s.logger.WithField("user_id", user.ID)
		reminded, err := s.notifications.ExistsSince(ctx, user.ID, models.NotificationTrialReminder, now.Add(-reminderCooldown))
		if err != nil {
			log.WithError(err).Warn("failed to check previous reminders")
			continue
		}
		if reminded {
			continue
		}

		result, err := s.SendReminder(ctx, uuid.Nil, user.ID, RequestMeta{})
		if err != nil {
			log.WithError(err).Warn("failed to send scheduled reminder")
			continue
		}
		if result.Success {
			sent++
		}
	}

	return sent, nil
}

func (s *TrialService) expiringSoonWindow() time.Duration {
	return time.Duration(s.expiringSoonDays) * day
}

func (s *TrialService) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewNotFoundError("user", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// userForAction loads the target of a trial action. A missing user becomes a
// NOT_FOUND result; other failures are returned as errors.
func (s *TrialService) userForAction(ctx context.Context, userID uuid.UUID) (*models.User, *ActionResult, error) {
	user, err := s.loadUser(ctx, userID)
	if _, ok := IsNotFoundError(err); ok {
		return nil, rejected(CodeNotFound, "user not found"), nil
	}
	if err != nil {
		return nil, nil, err
	}
	return user, nil, nil
}

// notify creates an informational notification. Failures are logged only.
func (s *TrialService) notify(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string) {
	err := s.notifications.Create(ctx, &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"type":    kind,
		}).Warn("failed to create notification")
	}
}

func (s *TrialService) recordOutcome(action string, result *ActionResult, err error) {
	s.metrics.RecordTrialAction(action, err == nil && result != nil && result.Success)
}

type fields = map[string]interface{}
