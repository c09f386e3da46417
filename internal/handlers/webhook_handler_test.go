package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	return router
}

func TestEmailEventWebhookAuthentication(t *testing.T) {
	t.Setenv("EMAIL_WEBHOOK_API_KEY", "test-api-key")

	handler := NewWebhookHandler(nil)
	router := setupTestRouter()
	router.POST("/webhooks/email", handler.EmailEventWebhook)

	payload := map[string]interface{}{
		"message_id": "msg-123",
		"recipient":  "contributor@example.com",
		"event":      "delivered",
	}
	payloadBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	// No API key
	req, err := http.NewRequest("POST", "/webhooks/email", bytes.NewBuffer(payloadBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Wrong API key
	req, err = http.NewRequest("POST", "/webhooks/email", bytes.NewBuffer(payloadBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "wrong-key")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestEmailEventWebhookRejectsIncompletePayload(t *testing.T) {
	t.Setenv("EMAIL_WEBHOOK_API_KEY", "test-api-key")

	handler := NewWebhookHandler(nil)
	router := setupTestRouter()
	router.POST("/webhooks/email", handler.EmailEventWebhook)

	// Missing message_id
	payload := map[string]interface{}{
		"recipient": "contributor@example.com",
		"event":     "delivered",
	}
	payloadBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/webhooks/email", bytes.NewBuffer(payloadBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "test-api-key")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestEmailEventWebhookRejectsMalformedJSON(t *testing.T) {
	t.Setenv("EMAIL_WEBHOOK_API_KEY", "test-api-key")

	handler := NewWebhookHandler(nil)
	router := setupTestRouter()
	router.POST("/webhooks/email", handler.EmailEventWebhook)

	req, err := http.NewRequest("POST", "/webhooks/email", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "test-api-key")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
