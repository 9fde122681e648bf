// Package config loads the runtime configuration from the environment and
// builds the database handles the storage engines run on.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Defaults.
const (
	DefaultHTTPAddr       = ":8080"
	DefaultStorageDriver  = DriverMemory
	DefaultSQLitePath     = "librarium.db"
	DefaultTokenTTL       = 24 * time.Hour
	DefaultLoanPeriodDays = 14
	DefaultLogLevel       = "info"
)

// Config is the full runtime configuration of the service.
type Config struct {
	HTTPAddr       string
	StorageDriver  string
	DatabaseURL    string
	SQLitePath     string
	RedisAddr      string
	JWTSecret      string
	TokenTTL       time.Duration
	LoanPeriodDays int
	LogLevel       string
}

// FromEnv reads the configuration from environment variables, applying
// defaults for everything but the JWT secret, which has no safe default and
// is validated where the token issuer is built.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:       envOr("HTTP_ADDR", DefaultHTTPAddr),
		StorageDriver:  envOr("STORAGE_DRIVER", DefaultStorageDriver),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     envOr("SQLITE_PATH", DefaultSQLitePath),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       DefaultTokenTTL,
		LoanPeriodDays: DefaultLoanPeriodDays,
		LogLevel:       envOr("LOG_LEVEL", DefaultLogLevel),
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.StorageDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}

	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
		}

		cfg.TokenTTL = ttl
	}

	if raw := os.Getenv("LOAN_PERIOD_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			return Config{}, fmt.Errorf("invalid LOAN_PERIOD_DAYS %q", raw)
		}

		cfg.LoanPeriodDays = days
	}

	return cfg, nil
}

// LoanPeriod returns the loan period as a duration.
func (c Config) LoanPeriod() time.Duration {
	return time.Duration(c.LoanPeriodDays) * 24 * time.Hour
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
