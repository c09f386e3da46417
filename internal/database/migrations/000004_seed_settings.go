package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func seedSettingsMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_seed_settings",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS settings (
					key VARCHAR(100) PRIMARY KEY,
					value TEXT NOT NULL,
					description TEXT,
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
				)
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				INSERT INTO settings (key, value, description) VALUES
					('claim_value_usd', '5', 'USD value of a single claim'),
					('nctr_rate_usd', '0.05', 'USD price of one NCTR token')
				ON CONFLICT (key) DO NOTHING
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS settings").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, seedSettingsMigration())
}
