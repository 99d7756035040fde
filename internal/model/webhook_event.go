package model

import "time"

// WebhookEvent records a processed gateway event id. Gateways redeliver
// events; the unique index makes replayed deliveries no-ops.
type WebhookEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"uniqueIndex;not null" json:"event_id"`
	Type       string    `gorm:"type:varchar(60);index" json:"type"`
	ReceivedAt time.Time `json:"received_at"`
}
