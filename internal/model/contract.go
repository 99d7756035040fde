package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract statuses
const (
	ContractStatusDraft  = "draft"
	ContractStatusSigned = "signed"
)

// Contract is the lease agreement derived from an approved application.
// It moves from draft to signed once both parties have signed.
type Contract struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	ApplicationID    uint            `gorm:"uniqueIndex;not null" json:"application_id"`
	PropertyID       uint            `gorm:"index;not null" json:"property_id"`
	TenantID         uint            `gorm:"index;not null" json:"tenant_id"`
	LandlordID       uint            `gorm:"index;not null" json:"landlord_id"`
	Status           string          `gorm:"type:varchar(20);index;default:draft" json:"status"`
	MonthlyRent      decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_rent"`
	SecurityDeposit  decimal.Decimal `gorm:"type:decimal(10,2)" json:"security_deposit"`
	PlatformFee      decimal.Decimal `gorm:"type:decimal(10,2)" json:"platform_fee"`
	LeaseStartDate   time.Time       `json:"lease_start_date"`
	LeaseEndDate     time.Time       `json:"lease_end_date"`
	TenantSignedAt   *time.Time      `json:"tenant_signed_at,omitempty"`
	LandlordSignedAt *time.Time      `json:"landlord_signed_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PartyRole returns the caller's relation to the contract, or "" when the
// caller is neither party.
func (ct *Contract) PartyRole(userID uint) string {
	switch userID {
	case ct.TenantID:
		return RoleTenant
	case ct.LandlordID:
		return RoleLandlord
	default:
		return ""
	}
}
