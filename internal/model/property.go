package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Property statuses
const (
	PropertyStatusDraft       = "draft"
	PropertyStatusAvailable   = "available"
	PropertyStatusRented      = "rented"
	PropertyStatusMaintenance = "maintenance"
)

// Property represents a rental listing owned by a landlord
type Property struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LandlordID        uint            `gorm:"index;not null" json:"landlord_id"`
	Title             string          `gorm:"not null" json:"title"`
	Description       string          `json:"description"`
	Address           string          `json:"address"`
	City              string          `gorm:"index" json:"city"`
	Bedrooms          int             `json:"bedrooms"`
	Bathrooms         int             `json:"bathrooms"`
	AreaSqm           float64         `json:"area_sqm"`
	Status            string          `gorm:"type:varchar(20);index;default:draft" json:"status"`
	MonthlyRent       decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_rent"`
	SecurityDeposit   decimal.Decimal `gorm:"type:decimal(10,2)" json:"security_deposit"`
	MinimumStayMonths int             `gorm:"default:1" json:"minimum_stay_months"`
	AvailableFrom     *time.Time      `json:"available_from,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}
