package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/internal/repo"
	"github.com/markethive/accounts-backend/pkg/db/models"
	"github.com/markethive/accounts-backend/pkg/pagination"
)

// Repository persists append-only audit entries.
type Repository struct {
	repo.Base
}

// NewRepository constructs an activity repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create appends an audit entry.
func (r *Repository) Create(ctx context.Context, userID *uuid.UUID, action string) (*models.ActivityLog, error) {
	entry := &models.ActivityLog{
		UserID: userID,
		Action: action,
	}
	if err := r.DB(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns a page of visible entries ordered newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.ActivityLog, error) {
	query := r.DB(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseSeqCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ActivityLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SoftDelete hides an entry from listings without removing the row.
func (r *Repository) SoftDelete(ctx context.Context, id uint) error {
	result := r.DB(ctx).
		Model(&models.ActivityLog{}).
		Where("id = ?", id).
		UpdateColumn("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeSoftDeleted removes soft-deleted rows older than the cutoff and
// reports how many went away. Visible entries are never touched.
func (r *Repository) PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.DB(ctx).
		Where("is_deleted = ? AND created_at < ?", true, cutoff).
		Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}
