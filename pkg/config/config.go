// Package config loads engine configuration and governance configuration.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for steward-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (passwords)
// must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional dashboard snapshot cache)
	Redis RedisConfig `yaml:"redis"`

	// Engine behavior
	Engine EngineConfig `yaml:"engine"`

	// Dignity floor baseline monthly costs
	DignityFloor DignityFloorConfig `yaml:"dignity_floor"`

	// LimitsPath points to the constitutional limits file (governance
	// configuration; read-only for this engine).
	LimitsPath string `yaml:"limits_path" env:"LIMITS_PATH" env-default:"limits.yaml"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"steward"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"steward_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis configuration. Leave Host empty to run without a
// dashboard cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// EngineConfig holds engine behavior settings.
type EngineConfig struct {
	// PersistTimeoutSeconds bounds every persistence and ledger call. A
	// timed-out mutation is treated as unknown, never assumed succeeded.
	PersistTimeoutSeconds int `yaml:"persist_timeout_seconds" env:"PERSIST_TIMEOUT_SECONDS" env-default:"10"`

	// DashboardCacheTTLSeconds is how long a cached dashboard snapshot stays
	// fresh. Only used when Redis is configured.
	DashboardCacheTTLSeconds int `yaml:"dashboard_cache_ttl_seconds" env:"DASHBOARD_CACHE_TTL_SECONDS" env-default:"60"`

	// RecentUsageLimit caps the recent-usage history attached to a resource.
	RecentUsageLimit int `yaml:"recent_usage_limit" env:"RECENT_USAGE_LIMIT" env-default:"50"`
}

// PersistTimeout returns the persistence timeout as a duration.
func (e *EngineConfig) PersistTimeout() time.Duration {
	return time.Duration(e.PersistTimeoutSeconds) * time.Second
}

// DashboardCacheTTL returns the dashboard cache TTL as a duration.
func (e *EngineConfig) DashboardCacheTTL() time.Duration {
	return time.Duration(e.DashboardCacheTTLSeconds) * time.Second
}

// DignityFloorConfig holds the baseline monthly cost-of-living figures the
// analyzer sums into the dignity floor. Food is a daily rate; the analyzer
// multiplies it by 30.
type DignityFloorConfig struct {
	FoodDailyRate     float64 `yaml:"food_daily_rate" env:"FLOOR_FOOD_DAILY" env-default:"15"`
	ShelterMonthly    float64 `yaml:"shelter_monthly" env:"FLOOR_SHELTER_MONTHLY" env-default:"800"`
	HealthcareMonthly float64 `yaml:"healthcare_monthly" env:"FLOOR_HEALTHCARE_MONTHLY" env-default:"350"`
	InternetMonthly   float64 `yaml:"internet_monthly" env:"FLOOR_INTERNET_MONTHLY" env-default:"60"`
	TransportMonthly  float64 `yaml:"transport_monthly" env:"FLOOR_TRANSPORT_MONTHLY" env-default:"150"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.PersistTimeoutSeconds <= 0 {
		return fmt.Errorf("persist_timeout_seconds must be positive")
	}
	if c.DignityFloor.FoodDailyRate < 0 {
		return fmt.Errorf("dignity floor food_daily_rate must not be negative")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
