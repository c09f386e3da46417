package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createSubmissionTablesMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_submission_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS reward_submissions (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					submitter_id UUID NOT NULL,
					submitter_email VARCHAR(254),

					title VARCHAR(200) NOT NULL,
					description TEXT,
					category VARCHAR(100),
					brand VARCHAR(100),
					reward_type VARCHAR(50) NOT NULL,
					image_url TEXT,
					stock_quantity INT DEFAULT 0,

					floor_usd_amount DECIMAL(12,2) NOT NULL,
					lock_option VARCHAR(10) NOT NULL,
					nctr_value BIGINT NOT NULL,
					claims_required INT NOT NULL,
					claim_value_at_submission DECIMAL(12,4) NOT NULL,
					nctr_rate_at_submission DECIMAL(12,6) NOT NULL,
					unlock_date TIMESTAMP WITH TIME ZONE,

					version INT NOT NULL DEFAULT 1,
					parent_submission_id UUID REFERENCES reward_submissions(id),
					root_submission_id UUID NOT NULL,
					is_latest_version BOOLEAN NOT NULL DEFAULT TRUE,
					version_notes TEXT,

					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					admin_notes TEXT,
					rejection_reason TEXT,
					reviewer_id UUID,
					reviewed_at TIMESTAMP WITH TIME ZONE,

					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				)
			`).Error; err != nil {
				return err
			}

			// Chain-head lookups and the repair scan both resolve by root
			if err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_reward_submissions_root_head
				ON reward_submissions (root_submission_id, is_latest_version)
			`).Error; err != nil {
				return err
			}
			if err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_reward_submissions_status
				ON reward_submissions (status) WHERE is_latest_version
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS chain_inconsistencies (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					root_submission_id UUID NOT NULL,
					heads_found INT NOT NULL,
					repaired_head_id UUID NOT NULL,
					details JSONB,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				)
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS chain_inconsistencies").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS reward_submissions").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, createSubmissionTablesMigration())
}
