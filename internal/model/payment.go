package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment types
const (
	PaymentTypeSecurityDeposit = "security_deposit"
	PaymentTypeMonthlyRent     = "monthly_rent"
	PaymentTypePlatformFee     = "platform_fee"
	PaymentTypeLateFee         = "late_fee"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCanceled  = "canceled"
)

// Payment mirrors one payment intent at the gateway. Terminal statuses are
// set only by the webhook reconciliation path; everything else writes the
// row as pending and waits.
type Payment struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	ContractID            *uint           `gorm:"index" json:"contract_id,omitempty"`
	TenantID              uint            `gorm:"index;not null" json:"tenant_id"`
	LandlordID            uint            `gorm:"index" json:"landlord_id,omitempty"`
	Amount                decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Currency              string          `gorm:"type:varchar(3)" json:"currency"`
	Type                  string          `gorm:"type:varchar(30);not null" json:"type"`
	Status                string          `gorm:"type:varchar(20);index;default:pending" json:"status"`
	StripePaymentIntentID string          `gorm:"uniqueIndex" json:"stripe_payment_intent_id"`
	StripeChargeID        string          `json:"stripe_charge_id,omitempty"`
	FailureMessage        string          `json:"failure_message,omitempty"`
	PaidAt                *time.Time      `json:"paid_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
