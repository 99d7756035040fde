package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription statuses, mirroring the gateway's subscription object
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusPaused   = "paused"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusUnpaid   = "unpaid"
)

// Subscription is the local mirror of a recurring monthly-rent schedule.
// The gateway's subscription object is the source of truth; this row is a
// cache stamped with LastReconciledAt on every webhook update.
type Subscription struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	ContractID           uint            `gorm:"index;not null" json:"contract_id"`
	TenantID             uint            `gorm:"index;not null" json:"tenant_id"`
	LandlordID           uint            `gorm:"index;not null" json:"landlord_id"`
	StripeSubscriptionID string          `gorm:"uniqueIndex" json:"stripe_subscription_id"`
	StripeCustomerID     string          `gorm:"index" json:"-"`
	MonthlyRent          decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_rent"`
	Status               string          `gorm:"type:varchar(20);index;default:active" json:"status"`
	CurrentPeriodStart   *time.Time      `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time      `json:"current_period_end,omitempty"`
	NextPaymentDate      *time.Time      `json:"next_payment_date,omitempty"`
	CanceledAt           *time.Time      `json:"canceled_at,omitempty"`
	LastReconciledAt     *time.Time      `json:"last_reconciled_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
