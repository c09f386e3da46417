package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createCatalogTablesMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_catalog_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS catalog_rewards (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					submission_id UUID NOT NULL,
					slug VARCHAR(220) NOT NULL UNIQUE,
					title VARCHAR(200) NOT NULL,
					description TEXT,
					category VARCHAR(100),
					brand VARCHAR(100),
					reward_type VARCHAR(50) NOT NULL,
					image_url TEXT,
					stock_quantity INT DEFAULT 0,
					nctr_value BIGINT NOT NULL,
					claims_required INT NOT NULL,
					unlock_date TIMESTAMP WITH TIME ZONE,
					active BOOLEAN NOT NULL DEFAULT TRUE,
					published_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				)
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS email_events (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					provider_message_id VARCHAR(200) NOT NULL UNIQUE,
					recipient VARCHAR(254) NOT NULL,
					template VARCHAR(100),
					event_type VARCHAR(50) NOT NULL,
					occurred_at TIMESTAMP WITH TIME ZONE,
					payload JSONB,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				)
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS email_events").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS catalog_rewards").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, createCatalogTablesMigration())
}
