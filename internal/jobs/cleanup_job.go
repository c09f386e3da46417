package jobs

import (
	"log"
	"time"

	"github.com/crescendorewards/backend/internal/queue"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

const (
	completedJobRetention = 7 * 24 * time.Hour
	failedJobRetention    = 30 * 24 * time.Hour
	cleanupLockName       = "job_cleanup"
	cleanupLockTTL        = 30 * time.Minute
)

// CleanupJob prunes finished rows from the jobs table so the polling queries
// stay fast. Failed jobs are kept longer for debugging.
type CleanupJob struct {
	db    *gorm.DB
	redis *queue.RedisClient
}

// NewCleanupJob creates a new cleanup job
func NewCleanupJob(db *gorm.DB, redis *queue.RedisClient) *CleanupJob {
	return &CleanupJob{db: db, redis: redis}
}

// ScheduleCleanup registers the daily prune with the scheduler
func (j *CleanupJob) ScheduleCleanup(scheduler *gocron.Scheduler) error {
	_, err := scheduler.Every(1).Day().At("03:00").Do(j.Run)
	return err
}

// Run deletes stale finished jobs
func (j *CleanupJob) Run() {
	if j.redis != nil {
		ok, err := j.redis.AcquireLock(cleanupLockName, cleanupLockTTL)
		if err != nil {
			log.Printf("Job cleanup: failed to acquire lock: %v", err)
			return
		}
		if !ok {
			return
		}
		defer func() {
			if err := j.redis.ReleaseLock(cleanupLockName); err != nil {
				log.Printf("Job cleanup: failed to release lock: %v", err)
			}
		}()
	}

	completed := j.db.Where("status = ? AND updated_at < ?",
		queue.JobStatusCompleted, time.Now().Add(-completedJobRetention)).
		Delete(&queue.Job{})
	if completed.Error != nil {
		log.Printf("Job cleanup: failed to prune completed jobs: %v", completed.Error)
	}

	failed := j.db.Where("status = ? AND updated_at < ?",
		queue.JobStatusFailed, time.Now().Add(-failedJobRetention)).
		Delete(&queue.Job{})
	if failed.Error != nil {
		log.Printf("Job cleanup: failed to prune failed jobs: %v", failed.Error)
	}

	if completed.RowsAffected > 0 || failed.RowsAffected > 0 {
		log.Printf("Job cleanup: pruned %d completed and %d failed jobs",
			completed.RowsAffected, failed.RowsAffected)
	}
}
