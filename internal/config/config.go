package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSAllowOrigins      string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	AccessSecret         string
	RefreshSecret        string
	AccessExpiresIn      string
	RefreshExpiresIn     string
	AccessTTL            time.Duration
	RefreshTTL           time.Duration
	BcryptCost           int
	RequireVerifiedEmail bool
}

// RateLimitConfig bounds requests per client under /api.
type RateLimitConfig struct {
	Enabled     bool
	Max         int
	WindowSec   int
	RedisPrefix string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// ErrMissingSecret is returned when a token signing secret is not configured.
var ErrMissingSecret = errors.New("token signing secret not configured")

// Load reads configuration from the environment and an optional .env file.
// Missing signing secrets and unparseable lifetimes are fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	auth, err := loadAuth()
	if err != nil {
		return nil, err
	}
	env := getEnv("APP_ENV", "development")

	return &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "blog-api"),
			Env:                   env,
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", getEnv("PORT", "8000")),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSAllowOrigins:      getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: env != "production",
		},
		Auth: auth,
		RateLimit: RateLimitConfig{
			Enabled:     getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Max:         getEnvAsInt("RATE_LIMIT_MAX", 100),
			WindowSec:   getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 15*60),
			RedisPrefix: getEnv("RATE_LIMIT_REDIS_PREFIX", "blog:ratelimit:"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}, nil
}

func loadAuth() (AuthConfig, error) {
	auth := AuthConfig{
		AccessSecret:         os.Getenv("JWT_SECRET"),
		RefreshSecret:        os.Getenv("JWT_REFRESH_SECRET"),
		AccessExpiresIn:      getEnv("JWT_EXPIRES_IN", "1h"),
		RefreshExpiresIn:     getEnv("JWT_REFRESH_EXPIRES_IN", "7d"),
		BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 12),
		RequireVerifiedEmail: getEnvAsBool("AUTH_REQUIRE_VERIFIED_EMAIL", false),
	}
	if auth.AccessSecret == "" {
		return AuthConfig{}, fmt.Errorf("JWT_SECRET: %w", ErrMissingSecret)
	}
	if auth.RefreshSecret == "" {
		return AuthConfig{}, fmt.Errorf("JWT_REFRESH_SECRET: %w", ErrMissingSecret)
	}
	if auth.BcryptCost < bcrypt.MinCost || auth.BcryptCost > bcrypt.MaxCost {
		return AuthConfig{}, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	var err error
	if auth.AccessTTL, err = ParseLifetime(auth.AccessExpiresIn); err != nil {
		return AuthConfig{}, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}
	if auth.RefreshTTL, err = ParseLifetime(auth.RefreshExpiresIn); err != nil {
		return AuthConfig{}, fmt.Errorf("invalid JWT_REFRESH_EXPIRES_IN: %w", err)
	}
	return auth, nil
}

// ParseLifetime parses a token lifetime such as "15m", "1h" or "7d".
// The "d" suffix is accepted for whole days on top of time.ParseDuration units.
func ParseLifetime(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, errors.New("empty duration")
	}
	var d time.Duration
	if strings.HasSuffix(val, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(val, "d"))
		if err != nil {
			return 0, fmt.Errorf("parse days %q: %w", val, err)
		}
		d = time.Duration(days) * 24 * time.Hour
	} else {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", val)
	}
	return d, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Window returns the rate limit window.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowSec <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(r.WindowSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
