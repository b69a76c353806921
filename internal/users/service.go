package users

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
	"github.com/markethive/accounts-backend/pkg/pagination"
)

// UserList wraps a page of users plus the next page cursor.
type UserList struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// Service defines the user profile and admin management behavior.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, params pagination.Params) (*UserList, error)
	UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error
	Delete(ctx context.Context, userID uuid.UUID) error
	DeletePermanently(ctx context.Context, userID uuid.UUID) error
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, error)
	UpdateFCMToken(ctx context.Context, id uuid.UUID, token string) error
	SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type activityRecorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action string)
}

type service struct {
	repo     repository
	activity activityRecorder
}

// NewService constructs a users service.
func NewService(repo repository, activity activityRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if activity == nil {
		return nil, fmt.Errorf("activity recorder is required")
	}
	return &service{repo: repo, activity: activity}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.findExisting(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserList, error) {
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &UserList{Users: out, NextCursor: next}, nil
}

func (s *service) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "fcm_token is required")
	}
	if _, err := s.findExisting(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.UpdateFCMToken(ctx, userID, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update fcm token")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.findExisting(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, userID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "soft delete user")
	}
	s.activity.Record(ctx, &userID, "account deactivated")
	return nil
}

func (s *service) DeletePermanently(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if err := s.repo.HardDelete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hard delete user")
	}
	s.activity.Record(ctx, nil, "account permanently removed")
	return nil
}

func (s *service) findExisting(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
