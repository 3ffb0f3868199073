package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ssincom-backend/logger"
)

type Config struct {
	AppEnv string
	Addr   string

	DBDriver    string // postgres | mysql | sqlite
	DatabaseURL string
	DBDsn       string

	Username      string
	Password      string
	SessionSecret string
	SessionHours  int

	AllowedOrigins  string
	BodyLimitMB     int
	RateLimitMax    int
	RateLimitWindow int // seconds

	CompanyProfile  string
	WkhtmltopdfPath string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	addr := getEnv("APP_ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "8080")
	}

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "local"),
		Addr:            addr,
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:     NormalizeDatabaseURL(os.Getenv("DATABASE_URL")),
		DBDsn:           os.Getenv("DB_DSN"),
		Username:        os.Getenv("APP_USERNAME"),
		Password:        os.Getenv("APP_PASSWORD"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionHours:    getEnvInt("SESSION_HOURS", 12),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "*"),
		BodyLimitMB:     getEnvInt("BODY_LIMIT_MB", 4),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 120),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		CompanyProfile:  os.Getenv("COMPANY_PROFILE"),
		WkhtmltopdfPath: os.Getenv("WKHTMLTOPDF_PATH"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	missing := []string{}
	if c.DSN() == "" {
		missing = append(missing, "DATABASE_URL or DB_DSN")
	}
	if c.Username == "" {
		missing = append(missing, "APP_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "APP_PASSWORD")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return errors.New("missing env: " + strings.Join(missing, ", "))
	}

	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.New("unsupported DB_DRIVER: " + c.DBDriver)
	}
	return nil
}

// DSN picks DB_DSN when set, otherwise the normalized DATABASE_URL.
func (c *Config) DSN() string {
	if c.DBDsn != "" {
		return c.DBDsn
	}
	return c.DatabaseURL
}

// LoggerConfig maps the logging settings onto the logger package.
func (c *Config) LoggerConfig() logger.LogConfig {
	lc := logger.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Format = c.LogFormat
	return lc
}

// NormalizeDatabaseURL accepts Heroku/Railway style postgres:// URLs and requires TLS for public
// hosts. Internal hosts (*.railway.internal) and URLs that already choose an sslmode are left alone.
func NormalizeDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "postgres://") {
		raw = "postgresql://" + strings.TrimPrefix(raw, "postgres://")
	}
	if strings.Contains(raw, ".railway.internal") || strings.Contains(raw, "sslmode=") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("sslmode", "require")
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
