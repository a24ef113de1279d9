package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Env           string        `envconfig:"ENV" default:"dev" validate:"oneof=local dev test staging prod"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Port          string        `envconfig:"PORT" default:"8080" validate:"numeric"`
	ShutdownGrace time.Duration `envconfig:"SHUTDOWN_GRACE" default:"30s" validate:"gt=0"`

	DatabaseURL           string `envconfig:"DATABASE_URL" validate:"required"`
	RedisURL              string `envconfig:"REDIS_URL"`
	SnapshotRetentionDays int    `envconfig:"SNAPSHOT_RETENTION_DAYS" default:"0" validate:"gte=0"`

	GitHub GitHubConfig `envconfig:"GITHUB"`
	Render RenderConfig `envconfig:"MJML"`
	Mail   MailConfig   `envconfig:"MAILGUN"`
	Report ReportConfig `envconfig:"REPORT"`
}

// Load reads .env files, then the process environment, and validates the
// result.
func Load() (*Config, error) {
	for _, err := range loadDotEnv() {
		logrus.WithError(err).Debug("dotenv")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("env load: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// Level returns the configured logrus level.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Retention returns how long snapshots are kept, zero meaning forever.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.SnapshotRetentionDays) * 24 * time.Hour
}

func loadDotEnv() []error {
	files := []string{".env"}
	if appEnv := strings.TrimSpace(os.Getenv("APP_ENV")); appEnv != "" {
		files = append(files, ".env."+appEnv)
	}

	var errs []error
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Overload(f); err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", f, err))
		}
	}
	return errs
}
