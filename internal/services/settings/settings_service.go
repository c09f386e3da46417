package settings

import (
	"fmt"
	"strconv"

	"github.com/crescendorewards/backend/internal/models"
	"gorm.io/gorm"
)

// Service reads and updates system configuration rows. The claim value and
// NCTR rate are re-read on every call rather than cached: admins can change
// them at any time and pricing must always reflect the present configuration.
type Service struct {
	db *gorm.DB
}

// NewService creates a new settings service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns the raw setting row for a key
func (s *Service) Get(key string) (*models.Setting, error) {
	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, fmt.Errorf("error finding setting %s: %w", key, err)
	}
	return &setting, nil
}

// getFloat fetches a setting and parses it as a positive float
func (s *Service) getFloat(key string) (float64, error) {
	setting, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("setting %s is not numeric: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("setting %s must be positive, got %v", key, value)
	}
	return value, nil
}

// ClaimValueUSD returns the current USD value of one Claim
func (s *Service) ClaimValueUSD() (float64, error) {
	return s.getFloat(models.SettingClaimValueUSD)
}

// NCTRRateUSD returns the current USD price of one NCTR
func (s *Service) NCTRRateUSD() (float64, error) {
	return s.getFloat(models.SettingNctrRateUSD)
}

// Update sets a setting value. Pricing keys must parse as positive numbers.
func (s *Service) Update(key, value string) (*models.Setting, error) {
	switch key {
	case models.SettingClaimValueUSD, models.SettingNctrRateUSD:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("setting %s requires a numeric value: %w", key, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("setting %s must be positive, got %v", key, parsed)
		}
	}

	var setting models.Setting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, fmt.Errorf("error finding setting %s: %w", key, err)
	}

	setting.Value = value
	if err := s.db.Save(&setting).Error; err != nil {
		return nil, fmt.Errorf("error updating setting %s: %w", key, err)
	}
	return &setting, nil
}
