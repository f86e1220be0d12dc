package scheduler

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/config"
)

const sweepTimeout = 10 * time.Minute

// ReminderSweeper sends reminders to users whose trial is about to expire
type ReminderSweeper interface {
	RemindExpiring(ctx context.Context) (int, error)
}

// TrialReminderScheduler runs the expiring-trial reminder sweep on a cron schedule
type TrialReminderScheduler struct {
	sweeper ReminderSweeper
	config  config.SchedulerConfig
	logger  *logrus.Entry
	cron    *cron.Cron
	mu      sync.Mutex
	running bool

	// sweeping is held for the duration of one sweep, cron or manual
	sweeping atomic.Bool
	manual   sync.WaitGroup

	lastRun  time.Time
	lastSent int
	lastErr  error
}

// NewTrialReminderScheduler creates a new reminder scheduler
func NewTrialReminderScheduler(sweeper ReminderSweeper, cfg config.SchedulerConfig, logger *logrus.Entry) *TrialReminderScheduler {
	return &TrialReminderScheduler{
		sweeper: sweeper,
		config:  cfg,
		logger:  logger.WithField("component", "trial_reminder_scheduler"),
	}
}

// Start schedules the sweep. It is a no-op when reminders are disabled.
func (s *TrialReminderScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if !s.config.ReminderEnabled {
		s.logger.Info("trial reminder sweep is disabled")
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())

	if _, err := s.cron.AddFunc(normalizeSchedule(s.config.ReminderSchedule), func() { s.runSweep() }); err != nil {
		s.logger.WithError(err).Error("failed to schedule trial reminder sweep")
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.WithField("schedule", s.config.ReminderSchedule).Info("trial reminder scheduler started")
	return nil
}

// Stop stops the scheduler and waits for any scheduled or manual sweep to finish
func (s *TrialReminderScheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	wasRunning := s.running && c != nil
	s.running = false
	s.mu.Unlock()

	// a sweep records its outcome under mu, so wait without holding it
	if wasRunning {
		<-c.Stop().Done()
	}
	s.manual.Wait()

	if wasRunning {
		s.logger.Info("trial reminder scheduler stopped")
	}
}

// RunNow triggers an immediate sweep in the background. It returns false
// without starting anything when a sweep is already in progress.
func (s *TrialReminderScheduler) RunNow() bool {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Info("trial reminder sweep already in progress, manual run skipped")
		return false
	}
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		defer s.sweeping.Store(false)
		s.sweep()
	}()
	return true
}

// IsRunning returns whether the scheduler is running
func (s *TrialReminderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// GetStats returns scheduler statistics
func (s *TrialReminderScheduler) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"running":  s.running,
		"enabled":  s.config.ReminderEnabled,
		"schedule": s.config.ReminderSchedule,
		"sweeping": s.sweeping.Load(),
	}

	if !s.lastRun.IsZero() {
		stats["last_run"] = s.lastRun.Format(time.RFC3339)
		stats["last_sent"] = s.lastSent
		if s.lastErr != nil {
			stats["last_error"] = s.lastErr.Error()
		}
	}

	if s.cron != nil && s.running {
		if entries := s.cron.Entries(); len(entries) > 0 {
			stats["next_run"] = entries[0].Next.Format(time.RFC3339)
		}
	}

	return stats
}

// runSweep runs one sweep unless another is still in flight
func (s *TrialReminderScheduler) runSweep() bool {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Warn("previous trial reminder sweep still running, skipping")
		return false
	}
	defer s.sweeping.Store(false)
	s.sweep()
	return true
}

func (s *TrialReminderScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	sent, err := s.sweeper.RemindExpiring(ctx)

	s.mu.Lock()
	s.lastRun = start
	s.lastSent = sent
	s.lastErr = err
	s.mu.Unlock()

	log := s.logger.WithFields(logrus.Fields{
		"reminders_sent": sent,
		"duration":       time.Since(start).String(),
	})
	if err != nil {
		log.WithError(err).Error("trial reminder sweep failed")
		return
	}
	log.Info("completed trial reminder sweep")
}

// normalizeSchedule turns a standard 5-field cron spec into the 6-field form
// expected with seconds enabled
func normalizeSchedule(schedule string) string {
	if schedule == "" {
		return "0 0 9 * * *"
	}
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}
