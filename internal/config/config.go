package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultDatabaseURL  = "toyrental.db"
	defaultJWTSecret    = "change-me-jwt-secret"
	defaultJWTTTL       = "24h"
	defaultReminderHour = "8"
	defaultSMTPPort     = "587"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether an SMTP relay was set up. Without one the
// service falls back to logging outgoing mail instead of sending it.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration

	// Hour of day (local time) at which the reminder job fires.
	ReminderHour    int
	ReminderEnabled bool

	SMTP SMTPConfig
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.ReminderHour, err = parseIntEnv("REMINDER_HOUR", defaultReminderHour)
	if err != nil {
		return nil, err
	}
	cfg.ReminderEnabled = parseBoolEnv("REMINDER_ENABLED", "true")

	cfg.SMTP.Host = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTP.Port, err = parseIntEnv("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = strings.TrimSpace(os.Getenv("SMTP_FROM"))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s reminder_hour=%02d smtp=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.ReminderHour, cfg.SMTP.Configured())

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return fmt.Errorf("REMINDER_HOUR must be in 0..23")
	}
	if cfg.SMTP.Host != "" && cfg.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM must be set when SMTP_HOST is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
