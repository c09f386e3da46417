package database

import (
	"fmt"
	"time"

	"github.com/crescendorewards/backend/internal/config"
	"github.com/crescendorewards/backend/internal/models"
	"github.com/crescendorewards/backend/internal/queue"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB initializes the database connection with configuration
func InitDB(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dbConfig.URL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdle)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	return db.AutoMigrate(
		// Submission versioning
		&models.RewardSubmission{},
		&models.ChainInconsistency{},

		// Catalog
		&models.CatalogReward{},

		// System configuration
		&models.Setting{},

		// Email delivery tracking
		&models.EmailEvent{},

		// Background jobs
		&queue.Job{},
	)
}
