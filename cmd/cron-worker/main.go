package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/markethive/accounts-backend/internal/activity"
	"github.com/markethive/accounts-backend/internal/cron"
	"github.com/markethive/accounts-backend/internal/otp"
	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/db"
	"github.com/markethive/accounts-backend/pkg/logger"
	"github.com/markethive/accounts-backend/pkg/metrics"
	"github.com/markethive/accounts-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	lock, err := cron.NewRedisLock(redisClient, redisClient.CronLockKey("retention"), cfg.Retention.CronInterval)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	jobMetrics := metrics.NewCronJobMetrics(registry)

	otpJob, err := cron.NewOTPCleanupJob(cron.OTPCleanupJobParams{
		Logger:     logg,
		Repository: otp.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(ctx, "failed to create otp cleanup job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewActivityRetentionJob(cron.ActivityRetentionJobParams{
		Logger:     logg,
		Repository: activity.NewRepository(dbClient.DB()),
		Retention:  cfg.Retention.ActivityLogDays,
	})
	if err != nil {
		logg.Error(ctx, "failed to create activity retention job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(otpJob, retentionJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Retention.CronInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "starting cron worker")
	if err := service.Run(ctx); err != nil && err != context.Canceled {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}
