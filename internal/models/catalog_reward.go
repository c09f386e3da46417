package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogReward is a published reward minted from an approved submission. It
// snapshots the approved content and pricing so later versions of the chain
// never retroactively change what members see in the catalog.
type CatalogReward struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`

	Slug          string     `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Title         string     `gorm:"type:varchar(200);not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Category      string     `gorm:"type:varchar(100)" json:"category"`
	Brand         *string    `gorm:"type:varchar(100)" json:"brand,omitempty"`
	RewardType    RewardType `gorm:"type:varchar(50);not null" json:"reward_type"`
	ImageURL      string     `gorm:"type:text" json:"image_url"`
	StockQuantity int        `gorm:"default:0" json:"stock_quantity"`

	NctrValue      int64      `gorm:"not null" json:"nctr_value"`
	ClaimsRequired int        `gorm:"not null" json:"claims_required"`
	UnlockDate     *time.Time `json:"unlock_date,omitempty"`

	Active      bool      `gorm:"not null;default:true" json:"active"`
	PublishedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"published_at"`

	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (r *CatalogReward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
