package submission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crescendorewards/backend/internal/compensation"
	"github.com/crescendorewards/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrStaleParent means a caller tried to branch a chain from a version
	// that is no longer the head. The caller should reload and retry.
	ErrStaleParent = errors.New("submission is not the latest version of its chain")

	// ErrMissingChangeDescription means a resubmission arrived without
	// version notes explaining what changed.
	ErrMissingChangeDescription = errors.New("version notes are required")

	// ErrNotResubmittable means the submission is not in a rejected state.
	ErrNotResubmittable = errors.New("only rejected submissions can be resubmitted")

	// ErrNotUpdatable means the submission is not in an approved state.
	ErrNotUpdatable = errors.New("only approved submissions can receive update requests")

	// ErrNotPending means a review decision arrived for a submission that is
	// not pending, usually because another reviewer got there first.
	ErrNotPending = errors.New("only pending submissions can be reviewed")
)

// Changes carries field overrides applied to a new version. Nil fields are
// copied from the parent unchanged.
type Changes struct {
	Title          *string              `json:"title,omitempty"`
	Description    *string              `json:"description,omitempty"`
	Category       *string              `json:"category,omitempty"`
	Brand          *string              `json:"brand,omitempty"`
	RewardType     *models.RewardType   `json:"reward_type,omitempty"`
	ImageURL       *string              `json:"image_url,omitempty"`
	StockQuantity  *int                 `json:"stock_quantity,omitempty"`
	FloorUSDAmount *float64             `json:"floor_usd_amount,omitempty"`
	LockOption     *compensation.LockID `json:"lock_option,omitempty"`
}

// Pricing is a freshly computed compensation snapshot applied to a new
// version at insert time. Without it the child would carry its parent's
// stale rates until some later write.
type Pricing struct {
	NctrValue      int64
	ClaimsRequired int
	ClaimValueUSD  float64
	NctrRateUSD    float64
	UnlockDate     *time.Time
}

// ChainService maintains the single-head invariant across a lineage of
// reward submissions.
type ChainService struct {
	db *gorm.DB
}

// NewChainService creates a new chain service
func NewChainService(db *gorm.DB) *ChainService {
	return &ChainService{db: db}
}

// CreateNextVersion inserts a new head for the parent's chain and demotes the
// parent, as one database transaction. The parent flag flip is guarded so a
// concurrent resubmission against the same head loses with ErrStaleParent
// instead of forking the chain. A non-nil pricing is stamped on the child
// before the insert so the committed row never shows the parent's rates.
func (s *ChainService) CreateNextVersion(parent *models.RewardSubmission, changes Changes, versionNotes string, pricing *Pricing) (*models.RewardSubmission, error) {
	if !parent.IsLatestVersion {
		return nil, ErrStaleParent
	}

	child := s.buildChild(parent, changes, versionNotes, pricing)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Optimistic check: demote the parent only if it is still the head.
		res := tx.Model(&models.RewardSubmission{}).
			Where("id = ? AND is_latest_version = ?", parent.ID, true).
			Update("is_latest_version", false)
		if res.Error != nil {
			return fmt.Errorf("error demoting parent version: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleParent
		}

		if err := tx.Create(child).Error; err != nil {
			return fmt.Errorf("error creating new version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	parent.IsLatestVersion = false
	return child, nil
}

// buildChild copies the parent, applies overrides and the fresh pricing
// snapshot, and resets review state
func (s *ChainService) buildChild(parent *models.RewardSubmission, changes Changes, versionNotes string, pricing *Pricing) *models.RewardSubmission {
	child := &models.RewardSubmission{
		SubmitterID:    parent.SubmitterID,
		SubmitterEmail: parent.SubmitterEmail,

		Title:         parent.Title,
		Description:   parent.Description,
		Category:      parent.Category,
		Brand:         parent.Brand,
		RewardType:    parent.RewardType,
		ImageURL:      parent.ImageURL,
		StockQuantity: parent.StockQuantity,

		FloorUSDAmount:         parent.FloorUSDAmount,
		LockOption:             parent.LockOption,
		NctrValue:              parent.NctrValue,
		ClaimsRequired:         parent.ClaimsRequired,
		ClaimValueAtSubmission: parent.ClaimValueAtSubmission,
		NctrRateAtSubmission:   parent.NctrRateAtSubmission,
		UnlockDate:             parent.UnlockDate,

		Version:            parent.Version + 1,
		ParentSubmissionID: &parent.ID,
		RootSubmissionID:   parent.RootSubmissionID,
		IsLatestVersion:    true,
		VersionNotes:       versionNotes,

		Status: models.SubmissionStatusPending,
	}

	if changes.Title != nil {
		child.Title = *changes.Title
	}
	if changes.Description != nil {
		child.Description = *changes.Description
	}
	if changes.Category != nil {
		child.Category = *changes.Category
	}
	if changes.Brand != nil {
		child.Brand = changes.Brand
	}
	if changes.RewardType != nil {
		child.RewardType = *changes.RewardType
	}
	if changes.ImageURL != nil {
		child.ImageURL = *changes.ImageURL
	}
	if changes.StockQuantity != nil {
		child.StockQuantity = *changes.StockQuantity
	}
	if changes.FloorUSDAmount != nil {
		child.FloorUSDAmount = *changes.FloorUSDAmount
	}
	if changes.LockOption != nil {
		child.LockOption = string(*changes.LockOption)
	}

	if pricing != nil {
		child.NctrValue = pricing.NctrValue
		child.ClaimsRequired = pricing.ClaimsRequired
		child.ClaimValueAtSubmission = pricing.ClaimValueUSD
		child.NctrRateAtSubmission = pricing.NctrRateUSD
		child.UnlockDate = pricing.UnlockDate
	}

	return child
}

// ResolveLatest returns the head of a chain. The is_latest_version flag is
// the source of truth; when the flags are inconsistent (zero or multiple
// heads) the highest version wins as a fallback.
func (s *ChainService) ResolveLatest(rootID uuid.UUID) (*models.RewardSubmission, error) {
	var heads []models.RewardSubmission
	if err := s.db.Where("root_submission_id = ? AND is_latest_version = ?", rootID, true).
		Find(&heads).Error; err != nil {
		return nil, fmt.Errorf("error resolving chain head: %w", err)
	}
	if len(heads) == 1 {
		return &heads[0], nil
	}

	// Fallback scan for inconsistent chains. The ordering mirrors
	// selectTrueHead so the resolver and the repair scan pick the same row.
	var head models.RewardSubmission
	err := s.db.Where("root_submission_id = ?", rootID).
		Order("version DESC, created_at DESC, id DESC").
		First(&head).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("chain %s has no submissions: %w", rootID, err)
		}
		return nil, fmt.Errorf("error scanning chain: %w", err)
	}
	return &head, nil
}

// Lineage returns every version in a chain, oldest first
func (s *ChainService) Lineage(rootID uuid.UUID) ([]models.RewardSubmission, error) {
	var chain []models.RewardSubmission
	if err := s.db.Where("root_submission_id = ?", rootID).
		Order("version ASC, created_at ASC").
		Find(&chain).Error; err != nil {
		return nil, fmt.Errorf("error loading lineage: %w", err)
	}
	return chain, nil
}

// RepairChain restores the single-head invariant for a lineage. The row with
// the highest version is deterministically selected as the true head (ties
// broken by created_at, then id) and the flags on all others are corrected.
// Returns the recorded inconsistency, or nil when the chain was consistent.
func (s *ChainService) RepairChain(rootID uuid.UUID) (*models.ChainInconsistency, error) {
	chain, err := s.Lineage(rootID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}

	trueHead := selectTrueHead(chain)
	heads := 0
	for _, sub := range chain {
		if sub.IsLatestVersion {
			heads++
		}
	}

	if heads == 1 {
		for _, sub := range chain {
			if sub.IsLatestVersion && sub.ID == trueHead.ID {
				return nil, nil
			}
		}
	}

	inconsistency := &models.ChainInconsistency{
		RootSubmissionID: rootID,
		HeadsFound:       heads,
		RepairedHeadID:   trueHead.ID,
		Details: models.JSON{
			"heads_found":      heads,
			"chain_length":     len(chain),
			"promoted_version": trueHead.Version,
			"promoted_id":      trueHead.ID.String(),
		},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RewardSubmission{}).
			Where("root_submission_id = ? AND id <> ?", rootID, trueHead.ID).
			Update("is_latest_version", false).Error; err != nil {
			return fmt.Errorf("error demoting stale heads: %w", err)
		}
		if err := tx.Model(&models.RewardSubmission{}).
			Where("id = ?", trueHead.ID).
			Update("is_latest_version", true).Error; err != nil {
			return fmt.Errorf("error promoting true head: %w", err)
		}
		if err := tx.Create(inconsistency).Error; err != nil {
			return fmt.Errorf("error recording inconsistency: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inconsistency, nil
}

// selectTrueHead picks the row with the highest version as the true head,
// breaking ties by created_at and then id so repeated repairs agree
func selectTrueHead(chain []models.RewardSubmission) models.RewardSubmission {
	trueHead := chain[0]
	for _, sub := range chain[1:] {
		if sub.Version > trueHead.Version ||
			(sub.Version == trueHead.Version && sub.CreatedAt.After(trueHead.CreatedAt)) ||
			(sub.Version == trueHead.Version && sub.CreatedAt.Equal(trueHead.CreatedAt) &&
				strings.Compare(sub.ID.String(), trueHead.ID.String()) > 0) {
			trueHead = sub
		}
	}
	return trueHead
}

// DistinctRoots lists every lineage root id, for the periodic repair scan
func (s *ChainService) DistinctRoots() ([]uuid.UUID, error) {
	var roots []uuid.UUID
	if err := s.db.Model(&models.RewardSubmission{}).
		Distinct("root_submission_id").
		Pluck("root_submission_id", &roots).Error; err != nil {
		return nil, fmt.Errorf("error listing chain roots: %w", err)
	}
	return roots, nil
}
