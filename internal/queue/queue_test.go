package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff(t *testing.T) {
	h := NewRetryHandler(nil, nil)

	// 30s initial, 2.0 multiplier
	assert.Equal(t, 30*time.Second, h.calculateBackoff(1))
	assert.Equal(t, 60*time.Second, h.calculateBackoff(2))
	assert.Equal(t, 120*time.Second, h.calculateBackoff(3))
	assert.Equal(t, 240*time.Second, h.calculateBackoff(4))
}

func TestCalculateBackoffCapped(t *testing.T) {
	h := NewRetryHandler(nil, nil)
	h.retryConf.MaxInterval = 90 * time.Second

	assert.Equal(t, 90*time.Second, h.calculateBackoff(3))
	assert.Equal(t, 90*time.Second, h.calculateBackoff(10))
}

func TestMarkRetryable(t *testing.T) {
	h := NewRetryHandler(nil, nil)

	assert.False(t, h.retryTypes["notify_reviewers"])
	h.MarkRetryable("notify_reviewers")
	assert.True(t, h.retryTypes["notify_reviewers"])
}
