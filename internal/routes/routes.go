package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crescendorewards/backend/internal/handlers"
	"github.com/crescendorewards/backend/internal/middleware"
	"github.com/crescendorewards/backend/internal/queue"
	"github.com/crescendorewards/backend/internal/services/settings"
	"github.com/crescendorewards/backend/internal/services/submission"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, jobQueue *queue.Queue) {
	// 60 requests per second per IP, 10 submission writes per minute per user
	rateLimiter := middleware.NewRateLimiter(60, 10, 20, 3)

	settingsSvc := settings.NewService(db)
	workflow := submission.NewWorkflowService(db, jobQueue)

	submissionHandler := handlers.NewSubmissionHandler(workflow)
	compensationHandler := handlers.NewCompensationHandler(settingsSvc)
	adminHandler := handlers.NewAdminHandler(db, workflow, settingsSvc)
	webhookHandler := handlers.NewWebhookHandler(db)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public catalog data for the submission form
	publicGroup := router.Group("/api")
	publicGroup.Use(rateLimiter.IPRateLimiterMiddleware())
	{
		publicGroup.GET("/lock-options", compensationHandler.ListLockOptions)
		publicGroup.POST("/compensation/preview", compensationHandler.PreviewCompensation)
	}

	// Contributor routes
	submissionGroup := router.Group("/api/submissions")
	submissionGroup.Use(rateLimiter.IPRateLimiterMiddleware(), middleware.AuthMiddleware())
	{
		submissionGroup.GET("", submissionHandler.ListSubmissions)
		submissionGroup.GET("/:id", submissionHandler.GetSubmission)
		submissionGroup.GET("/:id/rejection-reason", submissionHandler.GetRejectionReason)

		writeGroup := submissionGroup.Group("")
		writeGroup.Use(rateLimiter.SubmissionWriteLimiterMiddleware())
		{
			writeGroup.POST("", submissionHandler.CreateSubmission)
			writeGroup.POST("/:id/resubmit", submissionHandler.ResubmitSubmission)
			writeGroup.POST("/:id/request-update", submissionHandler.RequestUpdate)
		}
	}

	// Admin routes
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(rateLimiter.IPRateLimiterMiddleware(), middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		adminGroup.GET("/submissions", adminHandler.ListReviewQueue)
		adminGroup.POST("/submissions/:id/approve", adminHandler.ApproveSubmission)
		adminGroup.POST("/submissions/:id/reject", adminHandler.RejectSubmission)
		adminGroup.GET("/submissions/:id/compare", adminHandler.CompareVersions)
		adminGroup.GET("/submissions/:id/compare/:otherId", adminHandler.CompareVersions)
		adminGroup.POST("/submissions/:id/repair", adminHandler.RepairChain)
		adminGroup.GET("/settings", adminHandler.GetSettings)
		adminGroup.GET("/settings/:key", adminHandler.GetSetting)
		adminGroup.PUT("/settings/:key", adminHandler.UpdateSetting)
		adminGroup.GET("/chain-health", adminHandler.GetChainHealth)
	}

	// Provider callbacks, authenticated by API key instead of JWT
	webhookGroup := router.Group("/webhooks")
	{
		webhookGroup.POST("/email", webhookHandler.EmailEventWebhook)
	}
}
