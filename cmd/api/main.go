package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/api/routes"
	"github.com/markethive/accounts-backend/internal/activity"
	"github.com/markethive/accounts-backend/internal/auth"
	"github.com/markethive/accounts-backend/internal/media"
	"github.com/markethive/accounts-backend/internal/otp"
	"github.com/markethive/accounts-backend/internal/rbac"
	"github.com/markethive/accounts-backend/internal/users"
	"github.com/markethive/accounts-backend/pkg/auth/session"
	"github.com/markethive/accounts-backend/pkg/config"
	"github.com/markethive/accounts-backend/pkg/db"
	"github.com/markethive/accounts-backend/pkg/logger"
	"github.com/markethive/accounts-backend/pkg/mail"
	"github.com/markethive/accounts-backend/pkg/metrics"
	"github.com/markethive/accounts-backend/pkg/migrate"
	"github.com/markethive/accounts-backend/pkg/redis"
	"github.com/markethive/accounts-backend/pkg/storage/s3"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

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

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	mailer, err := mail.NewSendgridSender(cfg.Sendgrid)
	if err != nil {
		logg.Error(ctx, "failed to create mail sender", err)
		os.Exit(1)
	}

	storageClient, err := s3.New(ctx, cfg.Storage)
	if err != nil {
		logg.Error(ctx, "failed to create storage client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := metrics.NewAuthMetrics(registry)

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	otpRepo := otp.NewRepository(gdb)
	rbacRepo := rbac.NewRepository(gdb)
	activityRepo := activity.NewRepository(gdb)

	activityService, err := activity.NewService(activityRepo, logg)
	fatalOn(ctx, logg, "activity service", err)

	otpService, err := otp.NewService(otp.ServiceParams{
		Repo:     otpRepo,
		Users:    userRepo,
		Mailer:   mailer,
		Activity: activityService,
		Logger:   logg,
		Metrics:  authMetrics,
		Site:     cfg.Site,
		OTP:      cfg.OTP,
	})
	fatalOn(ctx, logg, "otp service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Activity:       activityService,
		Metrics:        authMetrics,
		JWTConfig:      cfg.JWT,
	})
	fatalOn(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner: dbClient,
		UserRepoFactory: func(tx *gorm.DB) auth.RegisterUserRepository {
			return users.NewRepository(tx)
		},
		OTPService:     otpService,
		PasswordConfig: cfg.Password,
	})
	fatalOn(ctx, logg, "register service", err)

	adminCreateService, err := auth.NewAdminCreateService(auth.AdminCreateServiceParams{
		TxRunner: dbClient,
		UserRepoFactory: func(tx *gorm.DB) auth.RegisterUserRepository {
			return users.NewRepository(tx)
		},
		Mailer:         mailer,
		Activity:       activityService,
		Logger:         logg,
		PasswordConfig: cfg.Password,
		Site:           cfg.Site,
	})
	fatalOn(ctx, logg, "admin create service", err)

	userService, err := users.NewService(userRepo, activityService)
	fatalOn(ctx, logg, "user service", err)

	rbacService, err := rbac.NewService(rbacRepo, userRepo, activityService)
	fatalOn(ctx, logg, "rbac service", err)

	mediaService, err := media.NewService(media.ServiceParams{
		Users:    userRepo,
		Storage:  storageClient,
		Activity: activityService,
		Media:    cfg.Media,
	})
	fatalOn(ctx, logg, "media service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Metrics:  registry,
			Services: routes.Services{
				Auth:        authService,
				Register:    registerService,
				AdminCreate: adminCreateService,
				OTP:         otpService,
				Users:       userService,
				RBAC:        rbacService,
				Media:       mediaService,
				Activity:    activityService,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(startCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func fatalOn(ctx context.Context, logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+what, err)
	os.Exit(1)
}
