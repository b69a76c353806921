package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "markethive"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MARKETHIVE_DB_DSN"
	EnvDBHost = "MARKETHIVE_DB_HOST"
	EnvDBUser = "MARKETHIVE_DB_USER"
	EnvDBName = "MARKETHIVE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Site          SiteConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	OTP           OTPConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Sendgrid      SendgridConfig
	Storage       StorageConfig
	Media         MediaConfig
	Retention     RetentionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETHIVE_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETHIVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARKETHIVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETHIVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SiteConfig carries marketplace branding. It is threaded into the mailer at
// construction time instead of living in a process-scope global.
type SiteConfig struct {
	Name           string `envconfig:"MARKETHIVE_SITE_NAME" default:"MarketHive"`
	MarketplaceURL string `envconfig:"MARKETHIVE_MARKETPLACE_URL" default:"https://markethive.app"`
}

type DBConfig struct {
	DSN    string `envconfig:"MARKETHIVE_DB_DSN"`
	Driver string `envconfig:"MARKETHIVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MARKETHIVE_DB_HOST"`
	LegacyPort     int    `envconfig:"MARKETHIVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARKETHIVE_DB_USER"`
	LegacyPassword string `envconfig:"MARKETHIVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARKETHIVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARKETHIVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKETHIVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETHIVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETHIVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETHIVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETHIVE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MARKETHIVE_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETHIVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETHIVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETHIVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETHIVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETHIVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETHIVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETHIVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MARKETHIVE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MARKETHIVE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MARKETHIVE_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"MARKETHIVE_REFRESH_TOKEN_TTL_MINUTES" default:"7200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MARKETHIVE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MARKETHIVE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MARKETHIVE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MARKETHIVE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MARKETHIVE_ARGON_KEY_LEN" default:"32"`
}

type OTPConfig struct {
	Digits     int `envconfig:"MARKETHIVE_OTP_DIGITS" default:"6"`
	TTLMinutes int `envconfig:"MARKETHIVE_OTP_TTL_MINUTES" default:"10"`
}

// TTL returns the OTP validity window.
func (o OTPConfig) TTL() time.Duration {
	if o.TTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(o.TTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	OTPWindow          time.Duration `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_OTP_WINDOW" default:"1m"`
	OTPEmailLimit      int           `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_OTP_EMAIL_LIMIT" default:"5"`
	OTPIPLimit         int           `envconfig:"MARKETHIVE_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MARKETHIVE_AUTO_MIGRATE" default:"false"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"MARKETHIVE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"MARKETHIVE_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"MARKETHIVE_SENDGRID_FROM_NAME" default:"MarketHive Support"`
}

type StorageConfig struct {
	Bucket    string `envconfig:"MARKETHIVE_STORAGE_BUCKET" required:"true"`
	Region    string `envconfig:"MARKETHIVE_STORAGE_REGION" default:"us-east-1"`
	Endpoint  string `envconfig:"MARKETHIVE_STORAGE_ENDPOINT"`
	AccessKey string `envconfig:"MARKETHIVE_STORAGE_ACCESS_KEY"`
	SecretKey string `envconfig:"MARKETHIVE_STORAGE_SECRET_KEY"`
	PublicURL string `envconfig:"MARKETHIVE_STORAGE_PUBLIC_URL"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"MARKETHIVE_MAX_UPLOAD_MB" default:"5"`
}

type RetentionConfig struct {
	ActivityLogDays int           `envconfig:"MARKETHIVE_ACTIVITY_LOG_RETENTION_DAYS" default:"90"`
	CronInterval    time.Duration `envconfig:"MARKETHIVE_CRON_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
