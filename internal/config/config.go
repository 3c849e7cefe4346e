// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, LLM providers, timeouts, and storage settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LLM Configuration
	GeminiAPIKey string // Gemini API key; empty disables the Gemini provider
	GeminiModel  string // Gemini model (default: "gemini-2.0-flash")
	GroqAPIKey   string // Groq API key; empty disables the Groq fallback provider
	GroqModel    string // Groq model (default: "llama-3.3-70b-versatile")
	LLMTimeout   time.Duration

	// Resolver Configuration
	HistoryWindow int // Number of recent turns included in the LLM prompt (default: 6)

	// Rate Limiting (Token Bucket; guards the LLM path only)
	LLMRateLimitBurst     float64 // Maximum burst tokens per session (default: 10)
	LLMRateLimitRefillSec float64 // Tokens refilled per second (default: 0.05 = 1 per 20s)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Error tracking / log shipping
	SentryToken         string // Better Stack Errors token; empty disables Sentry
	SentryHost          string // Better Stack Errors ingesting host
	BetterstackToken    string // Better Stack Logs token; empty disables log shipping
	BetterstackEndpoint string // Better Stack Logs ingesting endpoint

	// Server Configuration
	Port            string
	LogLevel        string
	Environment     string // Deployment environment (default: "production")
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir               string        // Data directory for SQLite database
	ConversationRetention time.Duration // How long idle conversations are kept (default: 90 days)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LLM Configuration
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
		GroqModel:    getEnv("GROQ_MODEL", DefaultGroqModel),
		LLMTimeout:   getDurationEnv("LLM_TIMEOUT", LLMRequest),

		// Resolver Configuration
		HistoryWindow: getIntEnv("HISTORY_WINDOW", 6),

		// Rate Limiting
		LLMRateLimitBurst:     getFloatEnv("LLM_RATE_LIMIT_BURST", 10.0),
		LLMRateLimitRefillSec: getFloatEnv("LLM_RATE_LIMIT_REFILL_PER_SEC", 0.05), // 1 per 20s

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Error tracking / log shipping
		SentryToken:         getEnv("SENTRY_TOKEN", ""),
		SentryHost:          getEnv("SENTRY_HOST", "errors.betterstack.com"),
		BetterstackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterstackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),

		// Server Configuration
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Data Configuration
		DataDir:               getEnv("DATA_DIR", "data"),
		ConversationRetention: getDurationEnv("CONVERSATION_RETENTION", 90*24*time.Hour),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.HistoryWindow <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_WINDOW must be positive, got %d", c.HistoryWindow))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %v", c.LLMTimeout))
	}
	if c.ConversationRetention <= 0 {
		errs = append(errs, fmt.Errorf("CONVERSATION_RETENTION must be positive, got %v", c.ConversationRetention))
	}
	if c.LLMRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("LLM_RATE_LIMIT_BURST must be positive, got %v", c.LLMRateLimitBurst))
	}
	if c.LLMRateLimitRefillSec <= 0 {
		errs = append(errs, fmt.Errorf("LLM_RATE_LIMIT_REFILL_PER_SEC must be positive, got %v", c.LLMRateLimitRefillSec))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "edubot.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
