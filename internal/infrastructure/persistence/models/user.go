package models

import (
	"time"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
)

// UserModel is the persistence model for a store account. Only the fields
// emitted in identify calls are carried.
type UserModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Username  string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Admin     bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain UserProfile.
func (m *UserModel) ToDomain() tracking.UserProfile {
	return tracking.UserProfile{
		Username: m.Username,
		Email:    m.Email,
	}
}
