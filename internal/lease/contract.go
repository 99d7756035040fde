package lease

import (
	"net/mail"
	"strings"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/shopspring/decimal"
)

// MinIncomeRatio is the required ratio of declared monthly income to rent
// for a lease application to be accepted.
var MinIncomeRatio = decimal.NewFromFloat(2.5)

// ContractData holds the lease terms derived from an approved application,
// ready to be validated and persisted as a Contract.
type ContractData struct {
	ApplicationID   uint            `json:"application_id"`
	PropertyID      uint            `json:"property_id"`
	PropertyTitle   string          `json:"property_title"`
	TenantID        uint            `json:"tenant_id"`
	TenantName      string          `json:"tenant_name"`
	TenantEmail     string          `json:"tenant_email"`
	LandlordID      uint            `json:"landlord_id"`
	LandlordName    string          `json:"landlord_name"`
	LandlordEmail   string          `json:"landlord_email"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	LeaseStartDate  time.Time       `json:"lease_start_date"`
	LeaseEndDate    time.Time       `json:"lease_end_date"`
}

// DeriveContract builds the lease terms for an approved application. The
// lease runs from the application's move-in date for its requested duration;
// rent and deposit come from the property; the platform fee is a percentage
// of one month's rent.
func DeriveContract(app *model.Application, property *model.Property, tenant, landlord *model.User, feePercent float64) ContractData {
	start := app.MoveInDate
	end := start.AddDate(0, app.LeaseDurationMonths, 0)

	fee := property.MonthlyRent.
		Mul(decimal.NewFromFloat(feePercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	return ContractData{
		ApplicationID:   app.ID,
		PropertyID:      property.ID,
		PropertyTitle:   property.Title,
		TenantID:        tenant.ID,
		TenantName:      tenant.FullName(),
		TenantEmail:     tenant.Email,
		LandlordID:      landlord.ID,
		LandlordName:    landlord.FullName(),
		LandlordEmail:   landlord.Email,
		MonthlyRent:     property.MonthlyRent,
		SecurityDeposit: property.SecurityDeposit,
		PlatformFee:     fee,
		LeaseStartDate:  start,
		LeaseEndDate:    end,
	}
}

// Validate checks the derived terms before any Contract row is created.
// It returns the full list of problems, not just the first one.
func (d *ContractData) Validate() []string {
	var errs []string

	if strings.TrimSpace(d.TenantName) == "" {
		errs = append(errs, "tenant name is required")
	}
	if strings.TrimSpace(d.LandlordName) == "" {
		errs = append(errs, "landlord name is required")
	}
	if _, err := mail.ParseAddress(d.TenantEmail); err != nil {
		errs = append(errs, "tenant email is invalid")
	}
	if _, err := mail.ParseAddress(d.LandlordEmail); err != nil {
		errs = append(errs, "landlord email is invalid")
	}
	if !d.LeaseStartDate.Before(d.LeaseEndDate) {
		errs = append(errs, "lease start date must be before lease end date")
	}
	if !d.MonthlyRent.IsPositive() {
		errs = append(errs, "monthly rent must be positive")
	}

	return errs
}
