package otp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/internal/repo"
	"github.com/markethive/accounts-backend/pkg/db/models"
)

// Repository persists activation codes.
type Repository struct {
	repo.Base
}

// NewRepository constructs an OTP repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create stores a fresh code for the user. Earlier codes are left alone.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, code string, expiry time.Time) (*models.ActivationOtp, error) {
	row := &models.ActivationOtp{
		UserID:     userID,
		Code:       code,
		ExpiryDate: expiry,
	}
	if err := r.DB(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindLatestByCode returns the newest row holding the code. Codes are not
// unique across users, so recency decides which claim wins.
func (r *Repository) FindLatestByCode(ctx context.Context, code string) (*models.ActivationOtp, error) {
	var row models.ActivationOtp
	if err := r.DB(ctx).
		Where("code = ?", code).
		Order("created_at DESC, id DESC").
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteAllForUser removes every outstanding code the user holds.
func (r *Repository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.DB(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ActivationOtp{}).Error
}

// DeleteExpired purges codes whose expiry has passed and reports the count.
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB(ctx).
		Where("expiry_date < ?", now).
		Delete(&models.ActivationOtp{})
	return result.RowsAffected, result.Error
}
