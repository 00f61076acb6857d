package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cobrax/tenauth/pkg/httpx"
	"github.com/cobrax/tenauth/pkg/jwtx"
)

type Config struct {
	Issuer         string // Issuer claim for tokens (default: tenauth)
	SigningKeyFile string // Optional: path to Ed25519 PKCS8 PEM; ephemeral key when unset
	AdminKeyHash   string // Optional: argon2id hash gating the admin endpoints
	DatabaseFile   string // Optional: path to SQLite database file (default: ./tenauth.db)

	AccessTokenTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTokenTTL time.Duration // Refresh token lifetime (default: 720h)

	ExchangeLimit httpx.WindowConfig // Fixed-window limit on the exchange endpoint
	ValidateLimit httpx.WindowConfig // Fixed-window limit on the validate endpoint
	RefreshLimit  httpx.WindowConfig // Fixed-window limit on the refresh endpoint

	CORSOrigins    []string // Optional: allowed browser origins
	SecureCookies  bool     // Secure flag on refresh cookies (default: true outside dev)
	Env            string   // Environment (dev, staging, prod) (default: dev)
	LogLevel       string   // Log level (debug, info, warn, error) (default: info)
	LogFormat      string   // Log format (json, text) (default: json)
	Port           int      // HTTP server port (default: 8080)
	AuditBufferLen int      // Async security event buffer (default: 256, 0 = synchronous)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	EventRetention       time.Duration // Security event retention (default: 2160h)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		Issuer:         getEnvOrDefault("TENAUTH_ISSUER", "tenauth"),
		SigningKeyFile: os.Getenv("TENAUTH_SIGNING_KEY_FILE"),
		AdminKeyHash:   os.Getenv("TENAUTH_ADMIN_KEY_HASH"),
		DatabaseFile:   getEnvOrDefault("TENAUTH_DATABASE_FILE", "tenauth.db"),

		AccessTokenTTL:  getEnvDurationOrDefault("TENAUTH_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("TENAUTH_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),

		ExchangeLimit: windowFromEnv("TENAUTH_EXCHANGE_LIMIT", httpx.WindowConfig{Max: 10, Window: time.Minute}),
		ValidateLimit: windowFromEnv("TENAUTH_VALIDATE_LIMIT", httpx.WindowConfig{Max: 100, Window: time.Minute}),
		RefreshLimit:  windowFromEnv("TENAUTH_REFRESH_LIMIT", httpx.WindowConfig{Max: 20, Window: time.Minute}),

		SecureCookies:  env != "dev",
		Env:            env,
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
		Port:           getEnvIntOrDefault("PORT", 8080),
		AuditBufferLen: getEnvIntOrDefault("TENAUTH_AUDIT_BUFFER", 256),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		EventRetention:       getEnvDurationOrDefault("TENAUTH_EVENT_RETENTION", 90*24*time.Hour),
	}

	if origins := os.Getenv("TENAUTH_CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if v := os.Getenv("TENAUTH_SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SecureCookies = b
		}
	}

	return cfg
}

// windowFromEnv parses "max/window", e.g. "10/1m". The default applies on
// any parse failure.
func windowFromEnv(key string, defaultValue httpx.WindowConfig) httpx.WindowConfig {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return defaultValue
	}

	maxReq, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || maxReq <= 0 {
		return defaultValue
	}
	window, err := time.ParseDuration(strings.TrimSpace(parts[1]))
	if err != nil || window <= 0 {
		return defaultValue
	}

	return httpx.WindowConfig{Max: maxReq, Window: window}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
