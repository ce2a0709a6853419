package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
	AppURL         string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	// AuthJWTSecret verifies session tokens issued by the identity provider.
	AuthJWTSecret string
	CronSecret    string

	SendgridAPIKey string
	MailFrom       string
	MailFromName   string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string

	DigestDelay     time.Duration
	DigestBatchSize int
	// DigestSchedule is a cron spec; empty leaves triggering to the cron endpoint.
	DigestSchedule string

	RateLimitProposal time.Duration
	RateLimitMessage  time.Duration
	RateLimitApply    time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		AppURL:         strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "skillswap"),

		AuthJWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		CronSecret:    os.Getenv("CRON_SECRET"),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "notifications@skillswap.local"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "SkillSync"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),

		DigestSchedule:  os.Getenv("DIGEST_SCHEDULE"),
		DigestBatchSize: 50,
	}

	var err error
	cfg.DigestDelay, err = parseDuration(getEnv("DIGEST_DELAY", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_DELAY: %w", err)
	}
	cfg.RateLimitProposal, err = parseDuration(getEnv("RATE_LIMIT_PROPOSAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PROPOSAL: %w", err)
	}
	cfg.RateLimitMessage, err = parseDuration(getEnv("RATE_LIMIT_MESSAGE", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_MESSAGE: %w", err)
	}
	cfg.RateLimitApply, err = parseDuration(getEnv("RATE_LIMIT_APPLY", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_APPLY: %w", err)
	}

	if cfg.AuthJWTSecret == "" {
		if cfg.AppEnv != "development" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET is required outside development")
		}
		cfg.AuthJWTSecret = "dev-secret"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
