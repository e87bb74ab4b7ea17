package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	LogLevel    string

	BaseURL      string
	DashboardURL string

	JWTSecret       string
	JWTAccessExpiry time.Duration

	OIDC OIDCConfig

	Google GoogleConfig
	Twilio TwilioConfig
	SMTP   SMTPConfig

	EncryptionKey string

	// Timezone renders appointment times in customer notifications.
	Timezone string

	SyncInterval   time.Duration
	MetricsEnabled bool
}

type OIDCConfig struct {
	IssuerURL string
	Audience  string
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type GoogleConfig struct {
	OAuthConfig
	GmailScope bool
}

type TwilioConfig struct {
	// WebhookAuthToken signs inbound webhooks. Empty disables signature checks.
	WebhookAuthToken string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "1h"))
	if err != nil {
		accessExpiry = time.Hour
	}

	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "0s"))
	if err != nil {
		syncInterval = 0
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:3000"),

		JWTSecret:       getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry: accessExpiry,

		OIDC: OIDCConfig{
			IssuerURL: getEnv("OIDC_ISSUER_URL", ""),
			Audience:  getEnv("OIDC_AUDIENCE", ""),
		},

		Google: GoogleConfig{
			OAuthConfig: OAuthConfig{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
			},
			GmailScope: getEnvBool("GOOGLE_GMAIL_SCOPE", false),
		},
		Twilio: TwilioConfig{
			WebhookAuthToken: getEnv("TWILIO_WEBHOOK_AUTH_TOKEN", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},

		EncryptionKey: getEnvOrPanic("ENCRYPTION_KEY"),

		Timezone: getEnv("TIMEZONE", "UTC"),

		SyncInterval:   syncInterval,
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesOIDC reports whether bearer tokens come from an external OIDC issuer
// rather than the local HS256 signer.
func (c *Config) UsesOIDC() bool {
	return c.OIDC.IssuerURL != ""
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GoogleConfigured reports whether an OAuth client for the Google connect
// flow is available.
func (c *Config) GoogleConfigured() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
