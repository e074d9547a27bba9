package app

import (
	"os"
	"strconv"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/service"
	"github.com/emsdesk/emsdesk/pkg/jwtx"
)

type Config struct {
	Issuer     string // Required: issuer claim for tokens (default: emsdesk-auth)
	TOTPIssuer string // Optional: issuer label shown in authenticator apps (default: EMSDesk)

	JWTSecret     string // Optional: JWT signing secret; overrides the secret file when set
	JWTSecretFile string // Optional: path to JWT signing secret file (default: ./jwt.secret)
	DatabaseFile  string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile    string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 7 days)
	OTPTTL          time.Duration // Optional: password reset code lifetime (default: 10m)
	MFAURL          string        // Optional: path a challenged login submits its second factor to

	SMTPHost     string // Optional: outbound mail relay; mail is logged instead when empty
	SMTPPort     string // Optional: relay port (default: 465, implicit TLS)
	SMTPUsername string // Optional: relay credentials
	SMTPPassword string // Optional: relay credentials
	SMTPFrom     string // Optional: From address on outbound mail

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	TokenRetention       time.Duration // How long token rows are kept (default: 14 days)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:     getEnvOrDefault("AUTH_ISSUER", "emsdesk-auth"),
		TOTPIssuer: getEnvOrDefault("AUTH_TOTP_ISSUER", "EMSDesk"),

		JWTSecret:     os.Getenv("AUTH_JWT_SECRET"), // Optional: file-based secret used when unset
		JWTSecretFile: getEnvOrDefault("AUTH_JWT_SECRET_FILE", "jwt.secret"),
		DatabaseFile:  getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:    getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		AccessTokenTTL:  getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		OTPTTL:          getEnvDurationOrDefault("AUTH_OTP_TTL", service.DefaultOTPTTL),
		MFAURL:          getEnvOrDefault("AUTH_MFA_URL", "/v1/auth/validate-login-otp"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvOrDefault("SMTP_PORT", "465"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@emsdesk.local"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		TokenRetention:       getEnvDurationOrDefault("AUTH_TOKEN_RETENTION", 14*24*time.Hour),
	}

	return cfg
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
