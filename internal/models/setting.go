package models

import (
	"time"
)

// Setting keys read by the compensation workflow. Admins can change both at
// runtime, so callers always fetch the current row instead of caching.
const (
	SettingClaimValueUSD = "claim_value_usd"
	SettingNctrRateUSD   = "nctr_rate_usd"
)

// Setting represents a key-value system configuration row
type Setting struct {
	Key         string    `gorm:"primaryKey;type:varchar(100)" json:"key"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Description string    `gorm:"type:text" json:"description"`
	UpdatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}
