package config

import (
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	Store         string `env:"STORE" envDefault:"postgres" validate:"oneof=postgres memory"`
	DatabaseURL   string `env:"DATABASE_URL" validate:"required_if=Store postgres"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret  string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"min=1m"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"log" validate:"oneof=log resend smtp"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"Superlists <noreply@superlists.local>" validate:"required"`
	ResendAPIKey  string `env:"RESEND_API_KEY" validate:"required_if=EmailProvider resend"`
	SMTPAddr      string `env:"SMTP_ADDR" validate:"required_if=EmailProvider smtp"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`

	LoginLinkBase       string        `env:"LOGIN_LINK_BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	LoginTokenMaxAge    time.Duration `env:"LOGIN_TOKEN_MAX_AGE" envDefault:"24h" validate:"min=0"`
	LoginTokenSingleUse bool          `env:"LOGIN_TOKEN_SINGLE_USE" envDefault:"false"`
	TokenReaperCron     string        `env:"TOKEN_REAPER_CRON" envDefault:"*/15 * * * *" validate:"required"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// EMAIL_FROM may carry a display name, e.g. "Superlists <noreply@example.com>".
	if _, err := mail.ParseAddress(cfg.EmailFrom); err != nil {
		return nil, fmt.Errorf("invalid config: EMAIL_FROM: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SecureCookies reports whether session cookies need the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.Env != "local"
}
