package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markethive/accounts-backend/api/controllers"
	"github.com/markethive/accounts-backend/api/middleware"
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
	"github.com/markethive/accounts-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth        auth.Service
	Register    auth.RegisterService
	AdminCreate auth.AdminCreateService
	OTP         otp.Service
	Users       users.Service
	RBAC        rbac.Service
	Media       media.Service
	Activity    activity.Service
}

// Params carries the infrastructure the router needs beyond services.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Metrics  *prometheus.Registry
	Services Services
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger
	svc := p.Services

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/users", controllers.AuthRegister(svc.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, p.Redis, logg)).Post("/otp/verify", controllers.OTPVerify(svc.OTP, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, p.Redis, logg)).Post("/otp/new", controllers.OTPNew(svc.OTP, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			r.Get("/me", controllers.Me(svc.Users, logg))
			r.Post("/image-upload", controllers.ImageUpload(svc.Media, logg))
			r.Post("/fcm-token", controllers.FCMToken(svc.Users, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

		r.Get("/modules", controllers.ModulesList(svc.RBAC, logg))
		r.Get("/permissions", controllers.PermissionsList(svc.RBAC, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Route("/roles", func(r chi.Router) {
				r.Get("/", controllers.RolesList(svc.RBAC, logg))
				r.Post("/", controllers.RolesCreate(svc.RBAC, logg))
				r.Get("/{roleId}", controllers.RolesGet(svc.RBAC, logg))
				r.Patch("/{roleId}", controllers.RolesUpdate(svc.RBAC, logg))
				r.Delete("/{roleId}", controllers.RolesDelete(svc.RBAC, logg))
			})
			r.Route("/activity-logs", func(r chi.Router) {
				r.Get("/", controllers.ActivityList(svc.Activity, logg))
				r.Delete("/{entryId}", controllers.ActivityDelete(svc.Activity, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUsersList(svc.Users, logg))
			r.Post("/", controllers.AdminUserCreate(svc.AdminCreate, logg))
			r.Patch("/{userId}/assign-roles", controllers.AdminAssignRoles(svc.RBAC, logg))
			r.Delete("/{userId}", controllers.AdminUserDelete(svc.Users, logg))
			r.Delete("/{userId}/permanent", controllers.AdminUserDeletePermanent(svc.Users, logg))
		})
	})

	return r
}
