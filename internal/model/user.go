package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
)

// User represents a marketplace account, either a tenant or a landlord
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`
	Password         string         `json:"-"` // bcrypt hash, never exposed in JSON responses
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	Phone            string         `json:"phone,omitempty"`
	Role             string         `gorm:"type:varchar(20);not null" json:"role"`
	StripeCustomerID string         `gorm:"index" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
