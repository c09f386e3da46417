package submission

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/crescendorewards/backend/internal/compensation"
	"github.com/crescendorewards/backend/internal/models"
	"github.com/crescendorewards/backend/internal/queue"
	"github.com/crescendorewards/backend/internal/services/settings"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Enqueuer is the slice of the job queue the workflow needs. Notification
// enqueue failures are logged and ignored; they never block a transition.
type Enqueuer interface {
	EnqueueJob(jobType queue.JobType, payload interface{}) (string, error)
}

// Notification job types emitted by the workflow
const (
	JobTypeNotifyReviewers queue.JobType = "notify_reviewers"
	JobTypeNotifyDecision  queue.JobType = "notify_submission_decision"
)

// ReviewerNotificationPayload is the payload for reviewer notification jobs
type ReviewerNotificationPayload struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Version      int       `json:"version"`
	Title        string    `json:"title"`
	VersionNotes string    `json:"version_notes"`
}

// DecisionNotificationPayload is the payload for submitter decision jobs
type DecisionNotificationPayload struct {
	SubmissionID uuid.UUID               `json:"submission_id"`
	SubmitterID  uuid.UUID               `json:"submitter_id"`
	Title        string                  `json:"title"`
	Status       models.SubmissionStatus `json:"status"`
	Reason       string                  `json:"reason,omitempty"`
}

// NewSubmissionInput is the contributor's form for a brand new reward proposal
type NewSubmissionInput struct {
	Title          string              `json:"title" binding:"required"`
	Description    string              `json:"description"`
	Category       string              `json:"category"`
	Brand          *string             `json:"brand,omitempty"`
	RewardType     models.RewardType   `json:"reward_type" binding:"required"`
	ImageURL       string              `json:"image_url"`
	StockQuantity  int                 `json:"stock_quantity"`
	FloorUSDAmount float64             `json:"floor_usd_amount" binding:"required"`
	LockOption     compensation.LockID `json:"lock_option" binding:"required"`
}

// WorkflowService orchestrates the submission lifecycle: creation, admin
// review, resubmission after rejection and post-approval update requests.
type WorkflowService struct {
	db       *gorm.DB
	chain    *ChainService
	settings *settings.Service
	jobs     Enqueuer
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(db *gorm.DB, jobs Enqueuer) *WorkflowService {
	return &WorkflowService{
		db:       db,
		chain:    NewChainService(db),
		settings: settings.NewService(db),
		jobs:     jobs,
	}
}

// Chain exposes the underlying chain service
func (s *WorkflowService) Chain() *ChainService {
	return s.chain
}

// GetSubmission loads a single submission by id
func (s *WorkflowService) GetSubmission(id uuid.UUID) (*models.RewardSubmission, error) {
	var sub models.RewardSubmission
	if err := s.db.First(&sub, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("error finding submission: %w", err)
	}
	return &sub, nil
}

// Create registers a brand new reward proposal as a chain root. Compensation
// is computed from the current system rates and persisted as a snapshot.
func (s *WorkflowService) Create(submitterID uuid.UUID, submitterEmail string, input NewSubmissionInput) (*models.RewardSubmission, error) {
	if !input.RewardType.Valid() {
		return nil, fmt.Errorf("unknown reward type %q", input.RewardType)
	}
	if input.FloorUSDAmount <= 0 {
		return nil, fmt.Errorf("floor amount is required")
	}

	snap, err := s.computeSnapshot(input.FloorUSDAmount, input.LockOption)
	if err != nil {
		return nil, err
	}

	sub := &models.RewardSubmission{
		SubmitterID:    submitterID,
		SubmitterEmail: submitterEmail,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		Brand:          input.Brand,
		RewardType:     input.RewardType,
		ImageURL:       input.ImageURL,
		StockQuantity:  input.StockQuantity,

		FloorUSDAmount:         input.FloorUSDAmount,
		LockOption:             string(input.LockOption),
		NctrValue:              snap.NctrValue,
		ClaimsRequired:         snap.ClaimsRequired,
		ClaimValueAtSubmission: snap.ClaimValueUSD,
		NctrRateAtSubmission:   snap.NctrRateUSD,
		UnlockDate:             snap.UnlockDate,

		Version:         1,
		IsLatestVersion: true,
		Status:          models.SubmissionStatusPending,
	}

	if err := s.db.Create(sub).Error; err != nil {
		return nil, fmt.Errorf("error creating submission: %w", err)
	}

	s.notifyReviewers(sub)
	return sub, nil
}

// Resubmit creates a new pending head after a rejection. Pricing is always
// re-evaluated against the present configuration: the new version's snapshots
// reflect the resubmission time, not the original submission.
func (s *WorkflowService) Resubmit(submissionID uuid.UUID, changes Changes, versionNotes string) (*models.RewardSubmission, error) {
	current, err := s.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.SubmissionStatusRejected {
		return nil, ErrNotResubmittable
	}
	return s.createRevision(current, changes, versionNotes)
}

// RequestUpdate creates a new pending head from an approved submission, for
// post-approval improvement requests. The approved version keeps its status;
// approval of the new version never rewrites the original's displayed state.
func (s *WorkflowService) RequestUpdate(submissionID uuid.UUID, changes Changes, versionNotes string) (*models.RewardSubmission, error) {
	current, err := s.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.SubmissionStatusApproved {
		return nil, ErrNotUpdatable
	}
	return s.createRevision(current, changes, versionNotes)
}

// createRevision is the shared mechanics behind Resubmit and RequestUpdate
func (s *WorkflowService) createRevision(current *models.RewardSubmission, changes Changes, versionNotes string) (*models.RewardSubmission, error) {
	if strings.TrimSpace(versionNotes) == "" {
		return nil, ErrMissingChangeDescription
	}

	floor := current.FloorUSDAmount
	if changes.FloorUSDAmount != nil {
		floor = *changes.FloorUSDAmount
	}
	lock := compensation.LockID(current.LockOption)
	if changes.LockOption != nil {
		lock = *changes.LockOption
	}

	// Price before branching the chain, so the new version is inserted with
	// the current rates in the same transaction that demotes the parent.
	snap, err := s.computeSnapshot(floor, lock)
	if err != nil {
		return nil, err
	}

	child, err := s.chain.CreateNextVersion(current, changes, versionNotes, snap)
	if err != nil {
		return nil, err
	}

	s.notifyReviewers(child)
	return child, nil
}

// Approve marks the current head approved and publishes it to the catalog
func (s *WorkflowService) Approve(submissionID, reviewerID uuid.UUID, adminNotes *string) (*models.RewardSubmission, error) {
	sub, err := s.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if !sub.IsLatestVersion {
		return nil, ErrStaleParent
	}
	if sub.Status != models.SubmissionStatusPending {
		return nil, fmt.Errorf("submission is %s: %w", sub.Status, ErrNotPending)
	}

	now := time.Now()
	reward, err := s.buildCatalogReward(sub)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RewardSubmission{}).
			Where("id = ? AND status = ?", sub.ID, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":      models.SubmissionStatusApproved,
				"admin_notes": adminNotes,
				"reviewer_id": reviewerID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("error approving submission: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("submission was reviewed concurrently: %w", ErrNotPending)
		}
		if err := tx.Create(reward).Error; err != nil {
			return fmt.Errorf("error publishing catalog reward: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sub.Status = models.SubmissionStatusApproved
	sub.AdminNotes = adminNotes
	sub.ReviewerID = &reviewerID
	sub.ReviewedAt = &now

	s.notifyDecision(sub, "")
	return sub, nil
}

// Reject marks the current head rejected. The rejection reason is stored as a
// structured field alongside the free-text admin notes.
func (s *WorkflowService) Reject(submissionID, reviewerID uuid.UUID, adminNotes, reason *string) (*models.RewardSubmission, error) {
	sub, err := s.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if !sub.IsLatestVersion {
		return nil, ErrStaleParent
	}
	if sub.Status != models.SubmissionStatusPending {
		return nil, fmt.Errorf("submission is %s: %w", sub.Status, ErrNotPending)
	}

	now := time.Now()
	res := s.db.Model(&models.RewardSubmission{}).
		Where("id = ? AND status = ?", sub.ID, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":           models.SubmissionStatusRejected,
			"admin_notes":      adminNotes,
			"rejection_reason": reason,
			"reviewer_id":      reviewerID,
			"reviewed_at":      now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("error rejecting submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("submission was reviewed concurrently: %w", ErrNotPending)
	}

	sub.Status = models.SubmissionStatusRejected
	sub.AdminNotes = adminNotes
	sub.RejectionReason = reason
	sub.ReviewerID = &reviewerID
	sub.ReviewedAt = &now

	s.notifyDecision(sub, s.RejectionReason(sub))
	return sub, nil
}

// RejectionReason returns the reason shown to the contributor. The structured
// field wins; free-text admin notes are a best-effort fallback.
func (s *WorkflowService) RejectionReason(sub *models.RewardSubmission) string {
	if sub.RejectionReason != nil && strings.TrimSpace(*sub.RejectionReason) != "" {
		return strings.TrimSpace(*sub.RejectionReason)
	}
	return ExtractRejectionReason(sub.AdminNotes)
}

// computeSnapshot reads the current system rates and prices the floor amount
func (s *WorkflowService) computeSnapshot(floorUSD float64, lockID compensation.LockID) (*Pricing, error) {
	claimValue, err := s.settings.ClaimValueUSD()
	if err != nil {
		return nil, fmt.Errorf("error reading claim value: %w", err)
	}
	nctrRate, err := s.settings.NCTRRateUSD()
	if err != nil {
		return nil, fmt.Errorf("error reading NCTR rate: %w", err)
	}

	result, err := compensation.Compute(floorUSD, lockID, nctrRate, time.Now())
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("floor amount is required")
	}

	claims, err := compensation.ClaimsRequired(floorUSD, claimValue)
	if err != nil {
		return nil, err
	}

	unlock := result.UnlockDate
	return &Pricing{
		NctrValue:      result.NctrAmount,
		ClaimsRequired: claims,
		ClaimValueUSD:  claimValue,
		NctrRateUSD:    nctrRate,
		UnlockDate:     &unlock,
	}, nil
}

// buildCatalogReward mints the published reward for an approved submission
func (s *WorkflowService) buildCatalogReward(sub *models.RewardSubmission) (*models.CatalogReward, error) {
	baseSlug := slug.Make(sub.Title)

	// Keep slugs unique across republished chains.
	var count int64
	if err := s.db.Model(&models.CatalogReward{}).
		Where("slug = ?", baseSlug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("error checking slug uniqueness: %w", err)
	}
	if count > 0 {
		baseSlug = fmt.Sprintf("%s-%s", baseSlug, sub.ID.String()[:8])
	}

	return &models.CatalogReward{
		SubmissionID:   sub.ID,
		Slug:           baseSlug,
		Title:          sub.Title,
		Description:    sub.Description,
		Category:       sub.Category,
		Brand:          sub.Brand,
		RewardType:     sub.RewardType,
		ImageURL:       sub.ImageURL,
		StockQuantity:  sub.StockQuantity,
		NctrValue:      sub.NctrValue,
		ClaimsRequired: sub.ClaimsRequired,
		UnlockDate:     sub.UnlockDate,
		Active:         true,
		PublishedAt:    time.Now(),
	}, nil
}

// notifyReviewers enqueues a reviewer notification. Failures are logged and
// never fail the workflow.
func (s *WorkflowService) notifyReviewers(sub *models.RewardSubmission) {
	if s.jobs == nil {
		return
	}
	payload := ReviewerNotificationPayload{
		SubmissionID: sub.ID,
		Version:      sub.Version,
		Title:        sub.Title,
		VersionNotes: sub.VersionNotes,
	}
	if _, err := s.jobs.EnqueueJob(JobTypeNotifyReviewers, payload); err != nil {
		log.Printf("Failed to enqueue reviewer notification for submission %s: %v", sub.ID, err)
	}
}

// notifyDecision enqueues a decision notification for the submitter
func (s *WorkflowService) notifyDecision(sub *models.RewardSubmission, reason string) {
	if s.jobs == nil {
		return
	}
	payload := DecisionNotificationPayload{
		SubmissionID: sub.ID,
		SubmitterID:  sub.SubmitterID,
		Title:        sub.Title,
		Status:       sub.Status,
		Reason:       reason,
	}
	if _, err := s.jobs.EnqueueJob(JobTypeNotifyDecision, payload); err != nil {
		log.Printf("Failed to enqueue decision notification for submission %s: %v", sub.ID, err)
	}
}

// ListForSubmitter returns a contributor's submissions, heads only unless
// history is requested
func (s *WorkflowService) ListForSubmitter(submitterID uuid.UUID, includeHistory bool) ([]models.RewardSubmission, error) {
	q := s.db.Where("submitter_id = ?", submitterID)
	if !includeHistory {
		q = q.Where("is_latest_version = ?", true)
	}
	var subs []models.RewardSubmission
	if err := q.Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("error listing submissions: %w", err)
	}
	return subs, nil
}

// ListForReview returns pending heads for the admin review queue, optionally
// filtered by status
func (s *WorkflowService) ListForReview(status models.SubmissionStatus) ([]models.RewardSubmission, error) {
	q := s.db.Where("is_latest_version = ?", true)
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var subs []models.RewardSubmission
	if err := q.Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("error listing review queue: %w", err)
	}
	return subs, nil
}

// RecentInconsistencies returns repair-scan findings for the health endpoint
func (s *WorkflowService) RecentInconsistencies(limit int) ([]models.ChainInconsistency, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.ChainInconsistency
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error listing chain inconsistencies: %w", err)
	}
	return rows, nil
}

// IsValidationError reports whether err should surface as a caller mistake
// rather than a server failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingChangeDescription) ||
		errors.Is(err, compensation.ErrUnknownLockOption)
}

// IsConflictError reports whether err is a lost optimistic-concurrency race
func IsConflictError(err error) bool {
	return errors.Is(err, ErrStaleParent) ||
		errors.Is(err, ErrNotResubmittable) ||
		errors.Is(err, ErrNotUpdatable) ||
		errors.Is(err, ErrNotPending)
}
