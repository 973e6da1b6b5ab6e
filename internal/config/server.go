package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Server holds the API server settings, read from MYDAYLOG_* variables.
type Server struct {
	Env                string
	Addr               string
	DBPath             string
	JWTSecret          string
	CSRFKey            string
	SecureCookies      bool
	ResendKey          string
	EmailFrom          string
	ReplyTo            string
	AppURL             string
	RateLimitPerSecond int
	SlowQuery          time.Duration
	SlowRequest        time.Duration
	ReminderInterval   time.Duration
	FutureSlackDays    int
}

// ErrMissingSecret is returned in production when signing secrets are unset.
var ErrMissingSecret = errors.New("MYDAYLOG_JWT_SECRET and MYDAYLOG_CSRF_KEY must be set in production")

const devSecret = "mydaylog-development-secret-32b!"

// LoadServer reads an optional .env file, then the environment.
// Variables already set in the environment win over .env entries.
// PRE: envFile may not exist
// POST: returns a complete config or an error describing the first problem
func LoadServer(envFile string) (Server, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Server{}, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	cfg := Server{
		Env:                envOrDefault("MYDAYLOG_ENV", EnvDevelopment),
		Addr:               envOrDefault("MYDAYLOG_ADDR", ":8080"),
		DBPath:             envOrDefault("MYDAYLOG_DB", "mydaylog.db"),
		JWTSecret:          os.Getenv("MYDAYLOG_JWT_SECRET"),
		CSRFKey:            os.Getenv("MYDAYLOG_CSRF_KEY"),
		ResendKey:          os.Getenv("MYDAYLOG_RESEND_KEY"),
		EmailFrom:          envOrDefault("MYDAYLOG_RESEND_FROM", "MyDayLog <noreply@mydaylog.app>"),
		ReplyTo:            envOrDefault("MYDAYLOG_REPLY_TO", "support@mydaylog.app"),
		AppURL:             envOrDefault("MYDAYLOG_APP_URL", "https://my-daily-log-svc.onrender.com"),
		RateLimitPerSecond: envInt("MYDAYLOG_RATE_LIMIT", 20),
		SlowQuery:          time.Duration(envInt("MYDAYLOG_SLOW_QUERY_MS", 50)) * time.Millisecond,
		SlowRequest:        time.Duration(envInt("MYDAYLOG_SLOW_REQUEST_MS", 200)) * time.Millisecond,
		ReminderInterval:   time.Duration(envInt("MYDAYLOG_REMINDER_INTERVAL_S", 30)) * time.Second,
		FutureSlackDays:    envInt("MYDAYLOG_FUTURE_SLACK_DAYS", 1),
	}
	cfg.SecureCookies = cfg.IsProduction()

	if cfg.JWTSecret == "" || cfg.CSRFKey == "" {
		if cfg.IsProduction() {
			return Server{}, ErrMissingSecret
		}
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devSecret
		}
		if cfg.CSRFKey == "" {
			cfg.CSRFKey = devSecret
		}
	}
	if len(cfg.CSRFKey) != 32 {
		return Server{}, fmt.Errorf("MYDAYLOG_CSRF_KEY must be 32 bytes, got %d", len(cfg.CSRFKey))
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in production.
func (s Server) IsProduction() bool {
	return s.Env == EnvProduction
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
