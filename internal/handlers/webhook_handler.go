package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crescendorewards/backend/internal/models"
)

// WebhookHandler handles callbacks from external providers
type WebhookHandler struct {
	db *gorm.DB
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(db *gorm.DB) *WebhookHandler {
	return &WebhookHandler{db: db}
}

// EmailEventWebhook records delivery-status callbacks from the email provider.
// Events are upserted on the provider message id so replays are harmless.
func (h *WebhookHandler) EmailEventWebhook(c *gin.Context) {
	apiKey := c.GetHeader("X-API-Key")
	if apiKey == "" || apiKey != os.Getenv("EMAIL_WEBHOOK_API_KEY") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var payload struct {
		MessageID string                 `json:"message_id"`
		Recipient string                 `json:"recipient"`
		Template  string                 `json:"template"`
		Event     string                 `json:"event"`
		Timestamp int64                  `json:"timestamp"`
		Data      map[string]interface{} `json:"data"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	if payload.MessageID == "" || payload.Event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message_id and event are required"})
		return
	}

	log.Printf("Received email webhook for message %s: %s", payload.MessageID, payload.Event)

	occurredAt := time.Now()
	if payload.Timestamp > 0 {
		occurredAt = time.Unix(payload.Timestamp, 0)
	}

	raw, _ := json.Marshal(payload.Data)
	event := models.EmailEvent{
		ProviderMessageID: payload.MessageID,
		Recipient:         payload.Recipient,
		Template:          payload.Template,
		EventType:         payload.Event,
		OccurredAt:        occurredAt,
		Payload:           string(raw),
	}

	err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"event_type", "occurred_at", "payload", "updated_at",
		}),
	}).Create(&event).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
