package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivationOtp is a one-time numeric code proving control of an email
// address. A user may hold several outstanding codes; all of them are purged
// once any one of them verifies.
type ActivationOtp struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Code       string    `gorm:"type:char(6);not null;index"`
	ExpiryDate time.Time `gorm:"column:expiry_date;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsValid reports whether the code can still be redeemed at the given instant.
func (o ActivationOtp) IsValid(now time.Time) bool {
	return now.Before(o.ExpiryDate)
}
