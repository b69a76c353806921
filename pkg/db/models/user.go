package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string               `gorm:"column:first_name;not null"`
	LastName     string               `gorm:"column:last_name;not null"`
	Email        string               `gorm:"type:text;not null;uniqueIndex"`
	Phone        *string              `gorm:"column:phone"`
	PasswordHash string               `gorm:"column:password_hash;not null"`
	Role         enums.UserRole       `gorm:"column:role;not null;default:user"`
	ImageURL     *string              `gorm:"column:image_url"`
	Provider     enums.SignupProvider `gorm:"column:provider;not null;default:email"`
	FCMToken     *string              `gorm:"column:fcm_token"`
	IsStaff      bool                 `gorm:"column:is_staff;not null;default:false"`
	IsAdmin      bool                 `gorm:"column:is_admin;not null;default:false"`
	IsActive     bool                 `gorm:"column:is_active;not null;default:true"`
	IsDeleted    bool                 `gorm:"column:is_deleted;not null;default:false"`
	DeletedAt    *time.Time           `gorm:"column:deleted_at"`
	LastLoginAt  *time.Time           `gorm:"column:last_login_at"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Groups []Group `gorm:"many2many:user_groups"`
}

// BeforeCreate assigns the id client-side when the dialect lacks
// gen_random_uuid (the sqlite test driver).
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
