package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/crescendorewards/backend/internal/models"
	"github.com/crescendorewards/backend/internal/queue"
	"github.com/crescendorewards/backend/internal/services/notify"
	"github.com/crescendorewards/backend/internal/services/submission"
	"gorm.io/gorm"
)

// idempotencyTTL is how long a sent notification blocks duplicates. Retried
// jobs inside this window are treated as already delivered.
const idempotencyTTL = 24 * time.Hour

// IdempotencyStore is the slice of the Redis client the notification job
// needs for duplicate suppression
type IdempotencyStore interface {
	ClaimIdempotencyKey(key string, ttl time.Duration) (bool, error)
	ReleaseIdempotencyKey(key string) error
}

// EmailSender delivers the reviewer and submitter notification emails
type EmailSender interface {
	SendReviewerNotification(toEmails []string, title string, version int, versionNotes string) error
	SendDecisionEmail(toEmail, title, status, reason string) error
}

// NotificationJob delivers reviewer and submitter emails enqueued by the
// submission workflow
type NotificationJob struct {
	db       *gorm.DB
	redis    IdempotencyStore
	emailSvc EmailSender
}

// NewNotificationJob creates a new notification job handler. A nil Redis
// client disables duplicate suppression rather than storing a typed nil.
func NewNotificationJob(db *gorm.DB, redis *queue.RedisClient, emailSvc *notify.EmailService) *NotificationJob {
	j := &NotificationJob{
		db:       db,
		emailSvc: emailSvc,
	}
	if redis != nil {
		j.redis = redis
	}
	return j
}

// RegisterNotificationJobHandlers registers the notification job handlers
func RegisterNotificationJobHandlers(q *queue.Queue, db *gorm.DB, redis *queue.RedisClient, emailSvc *notify.EmailService) {
	handler := NewNotificationJob(db, redis, emailSvc)

	q.RegisterHandler(submission.JobTypeNotifyReviewers, func(ctx context.Context, job queue.Job) (interface{}, error) {
		return nil, handler.ProcessReviewerNotification(ctx, &job)
	})
	q.RegisterHandler(submission.JobTypeNotifyDecision, func(ctx context.Context, job queue.Job) (interface{}, error) {
		return nil, handler.ProcessDecisionNotification(ctx, &job)
	})
}

// ProcessReviewerNotification emails the review team about a pending version
func (j *NotificationJob) ProcessReviewerNotification(ctx context.Context, job *queue.Job) error {
	var payload submission.ReviewerNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal reviewer notification payload: %w", err)
	}

	reviewers := reviewerEmails()
	if len(reviewers) == 0 {
		log.Printf("No reviewer emails configured, skipping notification for submission %s", payload.SubmissionID)
		return nil
	}

	key := fmt.Sprintf("notify_reviewers:%s:%d", payload.SubmissionID, payload.Version)
	if !j.claim(key) {
		log.Printf("Reviewer notification %s already sent, skipping", key)
		return nil
	}

	if err := j.emailSvc.SendReviewerNotification(reviewers, payload.Title, payload.Version, payload.VersionNotes); err != nil {
		// Give the key back so the retry is not mistaken for a duplicate.
		j.release(key)
		return fmt.Errorf("failed to send reviewer notification: %w", err)
	}
	return nil
}

// ProcessDecisionNotification emails the contributor about a review decision
func (j *NotificationJob) ProcessDecisionNotification(ctx context.Context, job *queue.Job) error {
	var payload submission.DecisionNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal decision notification payload: %w", err)
	}

	var sub models.RewardSubmission
	if err := j.db.First(&sub, "id = ?", payload.SubmissionID).Error; err != nil {
		return fmt.Errorf("failed to load submission %s: %w", payload.SubmissionID, err)
	}
	if sub.SubmitterEmail == "" {
		log.Printf("Submission %s has no submitter email, skipping decision notification", sub.ID)
		return nil
	}

	key := fmt.Sprintf("notify_decision:%s:%s", payload.SubmissionID, payload.Status)
	if !j.claim(key) {
		log.Printf("Decision notification %s already sent, skipping", key)
		return nil
	}

	if err := j.emailSvc.SendDecisionEmail(sub.SubmitterEmail, payload.Title, string(payload.Status), payload.Reason); err != nil {
		j.release(key)
		return fmt.Errorf("failed to send decision notification: %w", err)
	}
	return nil
}

// claim reserves an idempotency key. A claim that cannot be followed by a
// successful send must be released, or the queue's retries would see the key
// set and skip the notification for the whole TTL window. Without Redis every
// attempt is allowed through; the queue's retry bookkeeping is then the only
// duplicate guard.
func (j *NotificationJob) claim(key string) bool {
	if j.redis == nil {
		return true
	}
	ok, err := j.redis.ClaimIdempotencyKey(key, idempotencyTTL)
	if err != nil {
		log.Printf("Failed to claim idempotency key %s: %v", key, err)
		return true
	}
	return ok
}

// release gives a claimed idempotency key back after a failed send
func (j *NotificationJob) release(key string) {
	if j.redis == nil {
		return
	}
	if err := j.redis.ReleaseIdempotencyKey(key); err != nil {
		log.Printf("Failed to release idempotency key %s: %v", key, err)
	}
}

// reviewerEmails reads the review team addresses from the environment
func reviewerEmails() []string {
	raw := os.Getenv("REVIEWER_EMAILS")
	if raw == "" {
		return nil
	}
	var out []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
