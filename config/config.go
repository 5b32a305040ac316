package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ProviderURL     string        // Identity provider auth API base URL (e.g. https://<ref>.supabase.co/auth/v1)
	ProviderAnonKey string        // Provider public API key
	JWTSecret       string        // Secret the provider signs access tokens with
	JWTAudience     string        // Expected access-token audience claim
	DatabaseURL     string        // PostgreSQL DSN for the users table
	RedisURL        string        // Optional redis URL for the local store; empty selects in-memory
	Port            string        // Service port
	ProfileCacheTTL time.Duration // Profile cache TTL
	LogLevel        string        // Log level
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	config := &Config{
		ProviderURL:     getEnv("PROVIDER_URL", ""),
		ProviderAnonKey: getEnv("PROVIDER_ANON_KEY", ""),
		JWTSecret:       getEnv("PROVIDER_JWT_SECRET", ""),
		JWTAudience:     getEnv("PROVIDER_JWT_AUDIENCE", "authenticated"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		Port:            getEnv("PORT", "8890"),
		ProfileCacheTTL: 5 * time.Minute,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	// Parse PROFILE_CACHE_TTL if provided
	if ttlStr := os.Getenv("PROFILE_CACHE_TTL"); ttlStr != "" {
		duration, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PROFILE_CACHE_TTL format: %w", err)
		}
		config.ProfileCacheTTL = duration
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ProviderURL == "" {
		return fmt.Errorf("PROVIDER_URL cannot be empty")
	}

	if c.ProviderAnonKey == "" {
		return fmt.Errorf("PROVIDER_ANON_KEY cannot be empty")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("PROVIDER_JWT_SECRET cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.ProfileCacheTTL <= 0 {
		return fmt.Errorf("PROFILE_CACHE_TTL must be positive")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
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
