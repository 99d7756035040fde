package model

import "time"

// Booking types
const (
	BookingTypeViewing     = "viewing"
	BookingTypeApplication = "application"
)

// Booking statuses
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking tracks a tenant's viewing request, or the scheduling side of a
// lease application (every application gets a parallel booking row so both
// flows show up in one calendar).
type Booking struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PropertyID  uint       `gorm:"index;not null" json:"property_id"`
	TenantID    uint       `gorm:"index;not null" json:"tenant_id"`
	LandlordID  uint       `gorm:"index;not null" json:"landlord_id"`
	Type        string     `gorm:"type:varchar(20);not null" json:"type"`
	Status      string     `gorm:"type:varchar(20);index;default:pending" json:"status"`
	ViewingDate *time.Time `json:"viewing_date,omitempty"`
	ViewingTime string     `json:"viewing_time,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
