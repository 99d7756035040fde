package model

import "time"

// Notification types
const (
	NotificationBookingReceived      = "booking_received"
	NotificationApplicationReceived  = "application_received"
	NotificationApplicationApproved  = "application_approved"
	NotificationApplicationRejected  = "application_rejected"
	NotificationContractReady        = "contract_ready"
	NotificationContractSigned       = "contract_signed"
	NotificationAwaitingSignature    = "awaiting_signature"
	NotificationPaymentReceived      = "payment_received"
	NotificationPaymentFailed        = "payment_failed"
	NotificationRentPaid             = "rent_paid"
	NotificationRentOverdue          = "rent_overdue"
	NotificationSubscriptionCanceled = "subscription_canceled"
)

// Notification is a queued message for a user, written by state transitions
// on a fire-and-forget basis. An email worker drains the queue out of band.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Type      string     `gorm:"type:varchar(40);index;not null" json:"type"`
	Title     string     `json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	Data      string     `gorm:"type:text" json:"data,omitempty"` // JSON-encoded contextual fields
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
