// Package config loads process configuration from the environment once at
// startup. The result is treated as immutable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"resonanceAPI/internal/wellness"
)

type Config struct {
	// Server
	Port   string
	AppEnv string

	// Logging
	LogLevel string

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Auth
	ClerkSecretKey     string
	ClerkWebhookSecret string

	// Cache
	RedisURL    string
	SnapshotTTL time.Duration

	// Rate limit
	RateLimitRPS   float64
	RateLimitBurst int

	// Metrics basic auth
	MetricsUser string
	MetricsPass string

	DefaultScoreMode wellness.Mode
}

var validEnvs = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
	"test":        true,
}

// Load reads a .env file if one exists and then the process environment.
// Missing required variables are reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.ClerkSecretKey = os.Getenv("CLERK_SECRET_KEY")
	if cfg.ClerkSecretKey == "" {
		missing = append(missing, "CLERK_SECRET_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.Port = getEnvString("PORT", "3333")
	cfg.AppEnv = getEnvString("APP_ENV", "development")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.DBMaxConns = int32(getEnvInt("DB_MAX_CONNS", 25))
	cfg.DBMinConns = int32(getEnvInt("DB_MIN_CONNS", 5))
	cfg.ClerkWebhookSecret = os.Getenv("CLERK_WEBHOOK_SECRET")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.SnapshotTTL = getEnvDuration("SNAPSHOT_TTL", 10*time.Minute)
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", 5)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 30)
	cfg.MetricsUser = os.Getenv("METRICS_USER")
	cfg.MetricsPass = os.Getenv("METRICS_PASS")
	cfg.DefaultScoreMode = wellness.Mode(getEnvString("DEFAULT_SCORE_MODE", string(wellness.ModePilot)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q", c.AppEnv)
	}
	if c.DefaultScoreMode != wellness.ModePilot && c.DefaultScoreMode != wellness.ModeExtended {
		return fmt.Errorf("invalid DEFAULT_SCORE_MODE %q", c.DefaultScoreMode)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
