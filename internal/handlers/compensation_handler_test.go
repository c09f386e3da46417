package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLockOptions(t *testing.T) {
	handler := NewCompensationHandler(nil)
	router := setupTestRouter()
	router.GET("/lock-options", handler.ListLockOptions)

	req, err := http.NewRequest("GET", "/lock-options", nil)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		LockOptions []struct {
			ID          string  `json:"id"`
			Days        int     `json:"days"`
			Multiplier  float64 `json:"multiplier"`
			Recommended bool    `json:"recommended"`
			Label       string  `json:"label"`
		} `json:"lock_options"`
	}
	err = json.Unmarshal(recorder.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Len(t, body.LockOptions, 4)

	assert.Equal(t, "30 LOCK", body.LockOptions[0].Label)
	assert.Equal(t, "360 LOCK", body.LockOptions[2].Label)
	assert.True(t, body.LockOptions[2].Recommended)

	recommended := 0
	for _, opt := range body.LockOptions {
		if opt.Recommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestPreviewCompensationRejectsMissingLockOption(t *testing.T) {
	handler := NewCompensationHandler(nil)
	router := setupTestRouter()
	router.POST("/compensation/preview", handler.PreviewCompensation)

	payload := map[string]interface{}{
		"floor_usd_amount": 100,
	}
	payloadBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/compensation/preview", bytes.NewBuffer(payloadBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
