package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
	"github.com/markethive/accounts-backend/pkg/logger"
	"github.com/markethive/accounts-backend/pkg/pagination"
)

// EntryDTO is the transport shape of an audit entry.
type EntryDTO struct {
	ID        uint       `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Action    string     `json:"action"`
	CreatedAt time.Time  `json:"created_at"`
}

// EntryList wraps a page of entries plus the next page cursor.
type EntryList struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// Service records and serves the audit trail. Record is best-effort: a
// failed write logs a warning and never fails the calling flow.
type Service interface {
	Record(ctx context.Context, userID *uuid.UUID, action string)
	List(ctx context.Context, params pagination.Params) (*EntryList, error)
	Delete(ctx context.Context, id uint) error
}

type repository interface {
	Create(ctx context.Context, userID *uuid.UUID, action string) (*models.ActivityLog, error)
	List(ctx context.Context, params pagination.Params) ([]models.ActivityLog, error)
	SoftDelete(ctx context.Context, id uint) error
}

type service struct {
	repo repository
	logg *logger.Logger
}

// NewService constructs an activity service.
func NewService(repo repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, userID *uuid.UUID, action string) {
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}
	if _, err := s.repo.Create(ctx, userID, action); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "action", action), "recording activity failed: "+err.Error())
	}
}

func (s *service) List(ctx context.Context, params pagination.Params) (*EntryList, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list activity")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeSeqCursor(pagination.SeqCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	entries := make([]EntryDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, EntryDTO{
			ID:        row.ID,
			UserID:    row.UserID,
			Action:    row.Action,
			CreatedAt: row.CreatedAt,
		})
	}
	return &EntryList{Entries: entries, NextCursor: next}, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "activity entry not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete activity entry")
	}
	return nil
}
