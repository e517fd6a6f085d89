package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Rules    RulesConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	// Timezone names the zone punches are dated in, e.g. Asia/Jakarta.
	Timezone       string
}

// RulesConfig tunes the attendance and shift rules engine.
type RulesConfig struct {
	ShiftCacheTTL  time.Duration
	StatusStrategy string
}

type CronConfig struct {
	Enabled              bool
	ExpireTrialsInterval time.Duration
	AutoCloseInterval    time.Duration
}

// Status strategies accepted by ATTENDANCE_STATUS_STRATEGY.
const (
	StatusStrategyFirstSeen = "first_seen"
	StatusStrategyWorstCase = "worst_case"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris-rules"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	cacheTTL, err := time.ParseDuration(getEnv("SHIFT_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIFT_CACHE_TTL: %w", err)
	}
	config.Rules = RulesConfig{
		ShiftCacheTTL:  cacheTTL,
		StatusStrategy: getEnv("ATTENDANCE_STATUS_STRATEGY", StatusStrategyFirstSeen),
	}

	expireInterval, err := time.ParseDuration(getEnv("CRON_EXPIRE_TRIALS_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_EXPIRE_TRIALS_INTERVAL: %w", err)
	}
	autoCloseInterval, err := time.ParseDuration(getEnv("CRON_AUTO_CLOSE_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_AUTO_CLOSE_INTERVAL: %w", err)
	}
	cronEnabled, err := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_ENABLED: %w", err)
	}
	config.Cron = CronConfig{
		Enabled:              cronEnabled,
		ExpireTrialsInterval: expireInterval,
		AutoCloseInterval:    autoCloseInterval,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	switch c.Rules.StatusStrategy {
	case StatusStrategyFirstSeen, StatusStrategyWorstCase:
	default:
		return fmt.Errorf("ATTENDANCE_STATUS_STRATEGY must be %q or %q", StatusStrategyFirstSeen, StatusStrategyWorstCase)
	}
	if c.Rules.ShiftCacheTTL < 0 {
		return fmt.Errorf("SHIFT_CACHE_TTL must not be negative")
	}
	if c.Cron.Enabled && c.Cron.ExpireTrialsInterval <= 0 {
		return fmt.Errorf("CRON_EXPIRE_TRIALS_INTERVAL must be positive")
	}
	if c.Cron.Enabled && c.Cron.AutoCloseInterval <= 0 {
		return fmt.Errorf("CRON_AUTO_CLOSE_INTERVAL must be positive")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the organization-local zone. Validate has already
// checked the name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
