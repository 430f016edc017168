// Package config reads the service settings from the environment. Call
// godotenv.Load before Load to pick up a local .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/robfig/cron/v3"
)

const (
	defaultPort           = "1337"
	defaultHashAttempts   = 3
	defaultReportSchedule = "@daily"
)

type Config struct {
	Environment string
	LogLevel    string
	Port        string
	APIVersion  string

	DBDriver   string
	DBUsername string
	DBPassword string
	DBHostname string
	DBName     string
	DBSchema   string
	SQLitePath string

	JWTSecret string

	AuditPolicy    audit.Policy
	HashAttempts   int
	ReportSchedule string
}

func Load() (Config, error) {
	cfg := Config{
		Environment:    envOr("APP_ENV", "development"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		Port:           envOr("PORT", defaultPort),
		APIVersion:     envOr("API_VERSION", "1.0.0"),
		DBDriver:       strings.ToLower(envOr("DB_DRIVER", "postgres")),
		DBUsername:     os.Getenv("DB_USERNAME"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHostname:     os.Getenv("DB_HOSTNAME"),
		DBName:         os.Getenv("DB_DBNAME"),
		DBSchema:       os.Getenv("DB_SCHEMA"),
		SQLitePath:     envOr("SQLITE_PATH", "images.db"),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		HashAttempts:   defaultHashAttempts,
		ReportSchedule: envOr("AUDIT_REPORT_SCHEDULE", defaultReportSchedule),
	}

	policy, err := audit.ParsePolicy(os.Getenv("AUDIT_ACTOR_POLICY"))
	if err != nil {
		return Config{}, err
	}
	cfg.AuditPolicy = policy

	if v := strings.TrimSpace(os.Getenv("HASH_MAX_ATTEMPTS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("HASH_MAX_ATTEMPTS must be a positive integer, got %q", v)
		}
		cfg.HashAttempts = n
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if _, err := cron.ParseStandard(cfg.ReportSchedule); err != nil {
		return Config{}, fmt.Errorf("invalid AUDIT_REPORT_SCHEDULE: %w", err)
	}

	return cfg, nil
}

// PostgresDSN builds the connection string the same way for every binary.
func (c Config) PostgresDSN() string {
	dsn := "postgres://" + c.DBUsername + ":" + c.DBPassword + "@" + c.DBHostname + "/" + c.DBName
	if c.DBSchema != "" {
		dsn += "?search_path=" + c.DBSchema
	}
	return dsn
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
