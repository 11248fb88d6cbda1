// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/quantgold/internal/domain"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the cache database, always absolute
	Port            int
	LogLevel        string
	DevMode         bool
	FetchTimeout    time.Duration   // Per-attempt bound on upstream HTTP calls
	DefaultProvider domain.Provider // First candidate when the request names none
	BadgePolicy     domain.BadgePolicy
	Language        domain.Language
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("QUANTGOLD_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		FetchTimeout:    time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		DefaultProvider: parseProvider(getEnv("DATA_PROVIDER", "")),
		BadgePolicy:     parseBadgePolicy(getEnv("BADGE_POLICY", "")),
		Language:        parseLanguage(getEnv("LANGUAGE", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	return nil
}

// CacheDBPath returns the location of the client data cache database
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

func parseProvider(value string) domain.Provider {
	switch value {
	case "yahoo", "Yahoo", string(domain.ProviderYahoo):
		return domain.ProviderYahoo
	default:
		return domain.ProviderStooq
	}
}

func parseBadgePolicy(value string) domain.BadgePolicy {
	if value == string(domain.BadgePolicyChowder) {
		return domain.BadgePolicyChowder
	}
	return domain.BadgePolicyScores
}

func parseLanguage(value string) domain.Language {
	if value == "ES" || value == "es" {
		return domain.LanguageES
	}
	return domain.LanguageEN
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
