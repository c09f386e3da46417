package models

import (
	"time"
)

// EmailEvent records a delivery-status callback from the email provider.
// Rows are upserted on the provider message id so replayed webhooks are safe.
type EmailEvent struct {
	Base
	ProviderMessageID string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"provider_message_id"`
	Recipient         string    `gorm:"type:varchar(254);not null;index" json:"recipient"`
	Template          string    `gorm:"type:varchar(100)" json:"template"`
	EventType         string    `gorm:"type:varchar(50);not null" json:"event_type"` // delivered, bounced, opened, etc.
	OccurredAt        time.Time `json:"occurred_at"`
	Payload           string    `gorm:"type:jsonb" json:"payload,omitempty"`
}
