package main

import (
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/crescendorewards/backend/internal/config"
	"github.com/crescendorewards/backend/internal/database"
	"github.com/crescendorewards/backend/internal/database/migrations"
	"github.com/crescendorewards/backend/internal/jobs"
	"github.com/crescendorewards/backend/internal/queue"
	"github.com/crescendorewards/backend/internal/routes"
	"github.com/crescendorewards/backend/internal/services/notify"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize configuration
	cfg := config.LoadConfig()

	// Setup database connection
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis backs the repair-scan leader lock and notification idempotency.
	// The service degrades gracefully without it.
	redisClient, err := queue.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Warning: Redis unavailable, running without distributed locks: %v", err)
		redisClient = nil
	}

	// Initialize job queue and register handlers
	jobQueue := queue.NewQueue(db)
	emailService := notify.NewEmailService()
	jobs.RegisterAllJobHandlers(jobQueue, db, redisClient, emailService)
	jobQueue.StartProcessing()

	// Start the recurring chain repair scan
	scheduler, err := jobs.ScheduleRecurringJobs(db, redisClient)
	if err != nil {
		log.Fatalf("Failed to schedule recurring jobs: %v", err)
	}
	defer scheduler.Stop()

	// Initialize router
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Register routes
	routes.RegisterRoutes(router, db, jobQueue)

	// Start server
	fmt.Printf("Crescendo rewards API server running on port %s\n", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
