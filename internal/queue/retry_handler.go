package queue

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RetryConfig defines the configuration for job retries
type RetryConfig struct {
	MaxRetries      int           // Maximum number of retry attempts
	InitialInterval time.Duration // Initial retry interval
	MaxInterval     time.Duration // Maximum retry interval
	Multiplier      float64       // Backoff multiplier for subsequent retries
}

// RetryHandler manages job retries with exponential backoff
type RetryHandler struct {
	db         *gorm.DB
	queue      *Queue
	retryConf  RetryConfig
	retryTypes map[JobType]bool
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(db *gorm.DB, queue *Queue) *RetryHandler {
	conf := RetryConfig{
		MaxRetries:      5,
		InitialInterval: 30 * time.Second,
		MaxInterval:     1 * time.Hour,
		Multiplier:      2.0,
	}

	return &RetryHandler{
		db:         db,
		queue:      queue,
		retryConf:  conf,
		retryTypes: make(map[JobType]bool),
	}
}

// MarkRetryable makes a job type eligible for retries
func (h *RetryHandler) MarkRetryable(jobType JobType) {
	h.retryTypes[jobType] = true
}

// HandleFailedJob processes a failed job and schedules a retry if appropriate
func (h *RetryHandler) HandleFailedJob(job Job, err error) {
	if !h.retryTypes[job.Type] {
		log.Printf("Job type %s is not configured for retries. Job ID: %s, Error: %v", job.Type, job.ID, err)
		h.updateJobStatus(job.ID, JobStatusFailed, err.Error())
		return
	}

	retryCount := job.RetryCount + 1

	if retryCount > h.retryConf.MaxRetries {
		log.Printf("Job exceeded maximum retry attempts (%d). Job ID: %s, Error: %v",
			h.retryConf.MaxRetries, job.ID, err)
		h.updateJobStatus(job.ID, JobStatusFailed, fmt.Sprintf("Exceeded max retries: %v", err))
		return
	}

	nextRetryDelay := h.calculateBackoff(retryCount)
	nextRetryTime := time.Now().Add(nextRetryDelay)

	log.Printf("Scheduling retry %d/%d for job %s in %v. Error: %v",
		retryCount, h.retryConf.MaxRetries, job.ID, nextRetryDelay, err)

	h.updateJobForRetry(job.ID, retryCount, nextRetryTime, err.Error())
}

// calculateBackoff calculates the backoff duration for a retry attempt
func (h *RetryHandler) calculateBackoff(attempt int) time.Duration {
	interval := h.retryConf.InitialInterval
	for i := 1; i < attempt; i++ {
		interval = time.Duration(float64(interval) * h.retryConf.Multiplier)
		if interval > h.retryConf.MaxInterval {
			interval = h.retryConf.MaxInterval
			break
		}
	}
	return interval
}

// updateJobStatus updates the status of a job
func (h *RetryHandler) updateJobStatus(jobID uuid.UUID, status JobStatus, errorMsg string) {
	if err := h.db.Model(&Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     status,
			"error":      errorMsg,
			"updated_at": time.Now(),
		}).Error; err != nil {
		log.Printf("Failed to update job status: %v", err)
	}
}

// updateJobForRetry updates a job for retry
func (h *RetryHandler) updateJobForRetry(jobID uuid.UUID, retryCount int, nextRetry time.Time, errorMsg string) {
	if err := h.db.Model(&Job{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      JobStatusRetryScheduled,
			"retry_count": retryCount,
			"retry_at":    nextRetry,
			"error":       errorMsg,
			"updated_at":  time.Now(),
		}).Error; err != nil {
		log.Printf("Failed to update job for retry: %v", err)
	}
}

// ProcessRetryQueue checks for jobs scheduled for retry and re-queues them
func (h *RetryHandler) ProcessRetryQueue() {
	var jobsToRetry []Job

	if err := h.db.Where("status = ? AND retry_at <= ?", JobStatusRetryScheduled, time.Now()).
		Find(&jobsToRetry).Error; err != nil {
		log.Printf("Failed to query retry queue: %v", err)
		return
	}

	for _, job := range jobsToRetry {
		log.Printf("Processing retry for job %s (attempt %d/%d)",
			job.ID, job.RetryCount, h.retryConf.MaxRetries)

		if err := h.db.Model(&Job{}).
			Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"status":     JobStatusPending,
				"updated_at": time.Now(),
			}).Error; err != nil {
			log.Printf("Failed to update retry job status: %v", err)
			continue
		}

		h.queue.processJob(job)
	}
}

// StartRetryProcessor starts the background processor for retry queue
func (h *RetryHandler) StartRetryProcessor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			h.ProcessRetryQueue()
		}
	}()

	log.Printf("Retry processor started with interval: %v", interval)
}
