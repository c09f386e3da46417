package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionStatus is the review state of a reward submission
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Valid reports whether the status is one of the known review states
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// RewardType is the kind of catalog reward a submission proposes
type RewardType string

const (
	RewardTypeMerchandise RewardType = "merchandise"
	RewardTypeGiftCard    RewardType = "gift_card"
	RewardTypeExperience  RewardType = "experience"
)

// Valid reports whether the reward type is a known kind
func (t RewardType) Valid() bool {
	switch t {
	case RewardTypeMerchandise, RewardTypeGiftCard, RewardTypeExperience:
		return true
	}
	return false
}

// RewardSubmission represents a contributor-proposed catalog reward awaiting
// admin review. Submissions are versioned: a resubmission creates a new row
// linked to its parent and the superseded row keeps its review outcome for
// audit. Exactly one row per lineage carries IsLatestVersion.
type RewardSubmission struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`

	// SubmitterEmail is denormalized from the auth provider so decision
	// notifications do not need a lookup against the external user store.
	SubmitterID    uuid.UUID `gorm:"type:uuid;not null;index" json:"submitter_id"`
	SubmitterEmail string    `gorm:"type:varchar(254)" json:"submitter_email"`

	// Content fields
	Title         string     `gorm:"type:varchar(200);not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Category      string     `gorm:"type:varchar(100)" json:"category"`
	Brand         *string    `gorm:"type:varchar(100)" json:"brand,omitempty"`
	RewardType    RewardType `gorm:"type:varchar(50);not null" json:"reward_type"`
	ImageURL      string     `gorm:"type:text" json:"image_url"`
	StockQuantity int        `gorm:"default:0" json:"stock_quantity"`

	// Compensation fields. NctrValue, ClaimsRequired and the rate snapshots are
	// computed at submission time and never recomputed retroactively.
	FloorUSDAmount         float64    `gorm:"type:decimal(12,2);not null" json:"floor_usd_amount"`
	LockOption             string     `gorm:"type:varchar(10);not null" json:"lock_option"`
	NctrValue              int64      `gorm:"not null" json:"nctr_value"`
	ClaimsRequired         int        `gorm:"not null" json:"claims_required"`
	ClaimValueAtSubmission float64    `gorm:"type:decimal(12,4);not null" json:"claim_value_at_submission"`
	NctrRateAtSubmission   float64    `gorm:"type:decimal(12,6);not null" json:"nctr_rate_at_submission"`
	UnlockDate             *time.Time `json:"unlock_date,omitempty"`

	// Versioning fields. RootSubmissionID equals ID for a chain root so a full
	// lineage can be loaded with a single query.
	Version            int        `gorm:"not null;default:1" json:"version"`
	ParentSubmissionID *uuid.UUID `gorm:"type:uuid;index" json:"parent_submission_id,omitempty"`
	RootSubmissionID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"root_submission_id"`
	IsLatestVersion    bool       `gorm:"not null;default:true" json:"is_latest_version"`
	VersionNotes       string     `gorm:"type:text" json:"version_notes"`

	// Review fields
	Status          SubmissionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminNotes      *string          `gorm:"type:text" json:"admin_notes,omitempty"`
	RejectionReason *string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewerID      *uuid.UUID       `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`

	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate sets the UUID and pins the root reference for chain roots
func (s *RewardSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.RootSubmissionID == uuid.Nil {
		s.RootSubmissionID = s.ID
	}
	return nil
}

// IsRoot reports whether this submission starts a version chain
func (s *RewardSubmission) IsRoot() bool {
	return s.ParentSubmissionID == nil
}

// ChainInconsistency records a lineage whose head flags disagreed with the
// version numbers when the repair scan visited it
type ChainInconsistency struct {
	Base
	RootSubmissionID uuid.UUID `gorm:"type:uuid;not null;index" json:"root_submission_id"`
	HeadsFound       int       `gorm:"not null" json:"heads_found"`
	RepairedHeadID   uuid.UUID `gorm:"type:uuid;not null" json:"repaired_head_id"`
	Details          JSON      `gorm:"type:jsonb" json:"details"`
}
