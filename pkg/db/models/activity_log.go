package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is an append-only audit record of a user action.
type ActivityLog struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"column:action;not null"`
	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}
