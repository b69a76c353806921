package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markethive/accounts-backend/pkg/logger"
)

type fakeOTPCleanupRepo struct {
	lastNow time.Time
	deleted int64
	err     error
	called  int
}

func (f *fakeOTPCleanupRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.called++
	f.lastNow = now
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func newOTPCleanupJob(t *testing.T, repo *fakeOTPCleanupRepo) *otpCleanupJob {
	t.Helper()
	jobIface, err := NewOTPCleanupJob(OTPCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOTPCleanupJob: %v", err)
	}
	job, ok := jobIface.(*otpCleanupJob)
	if !ok {
		t.Fatalf("expected otpCleanupJob, got %T", jobIface)
	}
	return job
}

func TestOTPCleanupJobDeletesExpiredCodes(t *testing.T) {
	now := time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)
	repo := &fakeOTPCleanupRepo{deleted: 7}
	job := newOTPCleanupJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
	if !repo.lastNow.Equal(now) {
		t.Fatalf("expected cutoff %s, got %s", now, repo.lastNow)
	}
}

func TestOTPCleanupJobPropagatesErrors(t *testing.T) {
	repo := &fakeOTPCleanupRepo{err: errors.New("boom")}
	job := newOTPCleanupJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
