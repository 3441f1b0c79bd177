package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// SchedulerService runs the background maintenance jobs: sweeping expired
// invitations and pruning old audit logs. Jobs take a database lock before
// running so that multiple instances sharing one database do not double-run.
type SchedulerService struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
	instanceID    string
}

func NewSchedulerService(db *gorm.DB) *SchedulerService {
	hostname, _ := os.Hostname()
	return &SchedulerService{
		db:         db,
		instanceID: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
	}
}

func (s *SchedulerService) Start() {
	s.cronScheduler = cron.New()

	// hourly invitation expiry sweep
	if _, err := s.cronScheduler.AddFunc("0 * * * *", func() {
		s.withLock("invitation_expiry", time.Hour, func() {
			s.SweepExpiredInvitations()
		})
	}); err != nil {
		logger.Error().Err(err).Msg("failed to schedule invitation sweep")
	}

	// daily log retention cleanup
	if _, err := s.cronScheduler.AddFunc("30 3 * * *", func() {
		s.withLock("log_cleanup", 12*time.Hour, func() {
			RunLogCleanup(s.db)
		})
	}); err != nil {
		logger.Error().Err(err).Msg("failed to schedule log cleanup")
	}

	s.cronScheduler.Start()
	logger.Info().Str("instance", s.instanceID).Msg("scheduler started")
}

func (s *SchedulerService) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// withLock runs fn only if this instance holds the named lock. The lock is a
// row in scheduler_locks keyed by job name and time bucket; the unique index
// makes acquisition race-free across instances.
func (s *SchedulerService) withLock(name string, ttl time.Duration, fn func()) {
	if !s.tryAcquire(name, ttl) {
		return
	}
	fn()
}

func (s *SchedulerService) tryAcquire(name string, ttl time.Duration) bool {
	now := time.Now()
	bucket := now.Truncate(ttl).Format(time.RFC3339)

	// drop locks from earlier buckets so the table stays small
	s.db.Where("lock_name = ? AND expires_at < ?", name, now).
		Delete(&models.SchedulerLock{})

	lock := models.SchedulerLock{
		LockName:  name,
		LockKey:   bucket,
		LockedBy:  s.instanceID,
		LockedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.db.Create(&lock).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false
		}
		// drivers that don't map duplicate-key errors still mean "taken"
		logger.Debug().Err(err).Str("lock", name).Msg("lock not acquired")
		return false
	}
	return true
}

// SweepExpiredInvitations flips pending invitations past their deadline to
// expired. Returns the number of rows updated.
func (s *SchedulerService) SweepExpiredInvitations() int64 {
	result := s.db.Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, time.Now()).
		Update("status", models.InvitationExpired)
	if result.Error != nil {
		logger.Error().Err(result.Error).Msg("invitation expiry sweep failed")
		return 0
	}
	if result.RowsAffected > 0 {
		logger.Info().Int64("expired", result.RowsAffected).Msg("expired stale invitations")
	}
	return result.RowsAffected
}
