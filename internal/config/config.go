package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string
	AppEnv     string
	AppBaseURL string

	// Database
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Identity tokens sent by email
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration

	// Mail
	MailFrom     string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string

	// Export archive (S3-compatible)
	ExportBucket      string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Admin
	AdminEmails string

	// Program rules
	ReferralAllowDuplicates bool
	BannerAllowedHosts      string
	CasinoSeedPath          string
	MonthlyReportCron       string

	// Logging
	LogFile  string
	LogLevel string

	// Server
	Port        string
	CORSOrigins string

	SentryDSN string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		AppName:    getEnv("APP_NAME", "StakeBack"),
		AppEnv:     getEnv("APP_ENV", "development"),
		AppBaseURL: strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		SQLitePath: getEnv("SQLITE_PATH", "stakeback.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "stakeback"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		VerificationTokenTTL: parseDuration(getEnv("VERIFICATION_TOKEN_TTL", "48h"), 48*time.Hour),
		ResetTokenTTL:        parseDuration(getEnv("RESET_TOKEN_TTL", "1h"), time.Hour),

		MailFrom:     getEnv("MAIL_FROM", "support@casinocashback.com"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		ExportBucket:      getEnv("EXPORT_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		ReferralAllowDuplicates: parseBool(getEnv("REFERRAL_ALLOW_DUPLICATES", "true"), true),
		BannerAllowedHosts:      getEnv("BANNER_ALLOWED_HOSTS", ""),
		CasinoSeedPath:          getEnv("CASINO_SEED_PATH", ""),
		MonthlyReportCron:       getEnv("MONTHLY_REPORT_CRON", "0 9 1 * *"),

		LogFile:  getEnv("LOG_FILE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.DBDriver == "postgres" && c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// AdminEmailList returns ADMIN_EMAILS split on commas, lowercased.
func (c *Config) AdminEmailList() []string {
	return splitList(strings.ToLower(c.AdminEmails))
}

func (c *Config) BannerHosts() []string {
	return splitList(strings.ToLower(c.BannerAllowedHosts))
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
