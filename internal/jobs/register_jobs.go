package jobs

import (
	"time"

	"github.com/crescendorewards/backend/internal/queue"
	"github.com/crescendorewards/backend/internal/services/notify"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// RegisterAllJobHandlers registers all job handlers with the queue
func RegisterAllJobHandlers(
	q *queue.Queue,
	db *gorm.DB,
	redis *queue.RedisClient,
	emailSvc *notify.EmailService,
) {
	RegisterNotificationJobHandlers(q, db, redis, emailSvc)
}

// ScheduleRecurringJobs schedules all recurring jobs and starts the scheduler
func ScheduleRecurringJobs(db *gorm.DB, redis *queue.RedisClient) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(time.UTC)

	repairJob := NewChainRepairJob(db, redis)
	if err := repairJob.ScheduleRepairScan(scheduler); err != nil {
		return nil, err
	}

	cleanupJob := NewCleanupJob(db, redis)
	if err := cleanupJob.ScheduleCleanup(scheduler); err != nil {
		return nil, err
	}

	scheduler.StartAsync()
	return scheduler, nil
}
