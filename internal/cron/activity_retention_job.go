package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/markethive/accounts-backend/pkg/logger"
)

const activityRetentionDays = 90

type ActivityRetentionJobParams struct {
	Logger     *logger.Logger
	Repository activityRetentionRepo
	Retention  int
}

type activityRetentionRepo interface {
	PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewActivityRetentionJob hard-deletes activity log entries that were
// soft-deleted longer ago than the retention window.
func NewActivityRetentionJob(params ActivityRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = activityRetentionDays
	}
	return &activityRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type activityRetentionJob struct {
	logg      *logger.Logger
	repo      activityRetentionRepo
	retention int
	now       func() time.Time
}

func (j *activityRetentionJob) Name() string { return "activity-retention" }

func (j *activityRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	purged, err := j.repo.PurgeSoftDeleted(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("activity retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_purged":    purged,
	})
	j.logg.Info(logCtx, "activity retention complete")
	return nil
}
