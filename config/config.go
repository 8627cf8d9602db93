package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port     string // Service port
	LogLevel string // slog level

	DatabaseURL string // PostgreSQL DSN

	SigningKey      string        // HMAC key for both token kinds
	TokenIssuer     string        // JWT issuer claim
	AccessTokenTTL  time.Duration // Access token lifetime
	RefreshTokenTTL time.Duration // Refresh token lifetime

	GoogleClientID     string // OAuth client ID
	GoogleClientSecret string // OAuth client secret
	GoogleRedirectURL  string // Callback URL registered with the provider
	GoogleIssuerURL    string // OIDC issuer, overridable for tests

	AppURL        string // Frontend base URL for post-login redirects
	SecureCookies bool   // Secure flag on the refresh cookie

	RateLimitPerSecond float64 // Auth endpoint rate limit per IP
	RateLimitBurst     int     // Burst size for the limiter
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	config := &Config{
		Port:               getEnv("PORT", "4000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SigningKey:         getEnv("TOKEN_SIGNING_KEY", ""),
		TokenIssuer:        getEnv("TOKEN_ISSUER", "essay-auth"),
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    720 * time.Hour,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:4000/auth/google/callback"),
		GoogleIssuerURL:    getEnv("GOOGLE_ISSUER_URL", "https://accounts.google.com"),
		AppURL:             getEnv("APP_URL", "http://localhost:3000"),
		SecureCookies:      getEnv("SECURE_COOKIES", "true") == "true",
		RateLimitPerSecond: 10,
		RateLimitBurst:     20,
	}

	// Parse ACCESS_TOKEN_TTL if provided
	if ttlStr := os.Getenv("ACCESS_TOKEN_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL format: %w", err)
		}
		config.AccessTokenTTL = duration
	}

	// Parse REFRESH_TOKEN_TTL if provided
	if ttlStr := os.Getenv("REFRESH_TOKEN_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL format: %w", err)
		}
		config.RefreshTokenTTL = duration
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// A short HMAC key makes every minted token trivially forgeable.
	if len(c.SigningKey) < 32 {
		return fmt.Errorf("TOKEN_SIGNING_KEY must be at least 32 characters")
	}

	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}

	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must exceed ACCESS_TOKEN_TTL")
	}

	return nil
}

// FederatedEnabled reports whether the Google sign-in flow is configured.
func (c *Config) FederatedEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// getEnv retrieves an environment variable or returns a fallback value.
// A KEY_FILE variant pointing at a file wins over KEY, so secrets can be
// mounted instead of passed in the environment.
func getEnv(key, fallback string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
