package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application statuses
const (
	ApplicationStatusSubmitted   = "submitted"
	ApplicationStatusUnderReview = "under_review"
	ApplicationStatusApproved    = "approved"
	ApplicationStatusRejected    = "rejected"
)

// Application is a tenant's formal request to lease a property
type Application struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	PropertyID          uint            `gorm:"index;not null" json:"property_id"`
	TenantID            uint            `gorm:"index;not null" json:"tenant_id"`
	LandlordID          uint            `gorm:"index;not null" json:"landlord_id"`
	Status              string          `gorm:"type:varchar(20);index;default:submitted" json:"status"`
	MoveInDate          time.Time       `json:"move_in_date"`
	LeaseDurationMonths int             `json:"lease_duration_months"`
	MonthlyIncome       decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_income"`
	Employer            string          `json:"employer,omitempty"`
	References          string          `json:"references,omitempty"`
	RejectionReason     string          `json:"rejection_reason,omitempty"`
	NextSteps           string          `json:"next_steps,omitempty"`
	ReviewedAt          *time.Time      `json:"reviewed_at,omitempty"`
	ApprovedAt          *time.Time      `json:"approved_at,omitempty"`
	RejectedAt          *time.Time      `json:"rejected_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Reviewable reports whether a landlord action is still allowed.
// Approved and rejected are terminal.
func (a *Application) Reviewable() bool {
	return a.Status == ApplicationStatusSubmitted || a.Status == ApplicationStatusUnderReview
}
