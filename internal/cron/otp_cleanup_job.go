package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/markethive/accounts-backend/pkg/logger"
)

type OTPCleanupJobParams struct {
	Logger     *logger.Logger
	Repository otpCleanupRepo
}

type otpCleanupRepo interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// NewOTPCleanupJob deletes activation codes past their expiry. Unverified
// accounts keep requesting fresh codes, so stale rows only accumulate.
func NewOTPCleanupJob(params OTPCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("otp repository required")
	}
	return &otpCleanupJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type otpCleanupJob struct {
	logg *logger.Logger
	repo otpCleanupRepo
	now  func() time.Time
}

func (j *otpCleanupJob) Name() string { return "otp-cleanup" }

func (j *otpCleanupJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	deleted, err := j.repo.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("otp cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":        now,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "otp cleanup complete")
	return nil
}
