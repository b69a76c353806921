package users

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/internal/repo"
	"github.com/markethive/accounts-backend/pkg/db/models"
	"github.com/markethive/accounts-backend/pkg/pagination"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the non-deleted user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).
		Where("email = ? AND is_deleted = ?", email, false).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInactiveByEmail retrieves an unverified, non-deleted account for OTP reissue.
func (r *Repository) FindInactiveByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).
		Where("email = ? AND is_active = ? AND is_deleted = ?", email, false, false).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns a page of non-deleted users ordered newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	query := r.DB(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.User
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Activate flips the user to active.
func (r *Repository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("is_active", true).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateImageURL persists the user's profile image location.
func (r *Repository) UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("image_url", url).Error
}

// UpdateFCMToken stores the device token used for push targeting.
func (r *Repository) UpdateFCMToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("fcm_token", token).Error
}

// SoftDelete flags the user deleted and mangles the unique contact fields so
// the email can be registered again. The row stays queryable by primary key.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsDeleted {
		return nil
	}

	updates := map[string]any{
		"is_deleted": true,
		"is_active":  false,
		"deleted_at": now,
		"email":      fmt.Sprintf("%s-deleted-%s", randomDigits(), user.Email),
	}
	if user.Phone != nil {
		updates["phone"] = fmt.Sprintf("%s-deleted-%s", *user.Phone, randomDigits())
	}

	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(updates).Error
}

// HardDelete removes the row entirely. Dependent OTP rows cascade.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).
		Where("id = ?", id).
		Delete(&models.User{}).Error
}

func randomDigits() string {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "0"
	}
	return n.String()
}
