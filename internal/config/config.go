package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	DBDriver string
	DBConn   string
	LogLevel string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SeedUsersPath string

	LoginRatePerMinute int
	LoginRateBurst     int

	DigestCron   string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
}

// NewConfig loads configuration from environment variables.
// Values from a .env file in the working directory are applied first when present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=cleancare password=cleancare dbname=cleancare sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		SeedUsersPath: getEnv("SEED_USERS_PATH", ""),
		DigestCron:    getEnv("DIGEST_CRON", "0 8 * * *"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderEmail:   getEnv("SENDER_EMAIL", "noreply@cleancare.local"),
	}

	var err error
	if cfg.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = getEnvDuration("REFRESH_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerMinute, err = getEnvInt("LOGIN_RATE_PER_MINUTE", 20); err != nil {
		return nil, err
	}
	if cfg.LoginRateBurst, err = getEnvInt("LOGIN_RATE_BURST", 5); err != nil {
		return nil, err
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite3" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", cfg.DBDriver)
	}
	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}
	if cfg.LoginRatePerMinute <= 0 || cfg.LoginRateBurst <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE and LOGIN_RATE_BURST must be positive")
	}

	return cfg, nil
}

// SMTPEnabled reports whether outgoing mail is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
