package core

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the extraction core.
type Config struct {
	// OCR service (vision model)
	OpenAIAPIKey     string
	OpenAIAPIBaseURL string
	OCRModel         string
	OCRMaxTokens     int
	OCRTimeout       time.Duration

	// Retry behavior for the external OCR call
	MaxRetries int
	RetryDelay time.Duration

	// Processing
	MaxConcurrent int   // parallel page extractions per document
	MaxPages      int   // 0 for all pages
	MaxFileSize   int64 // reject PDFs larger than this many bytes

	// Optional persistence; empty means the in-memory record store
	DatabasePath string

	// Optional YAML file overriding the extraction scoring policy
	PolicyPath string

	// Logging
	LogFilePath string
	DevMode     bool
}

// Helper function to get environment variable with default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to parse integer environment variable with default value
func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Helper function to parse int64 environment variable with default value
func parseInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Helper function to parse duration (seconds) environment variable with default value
func parseSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. Only OPENAI_API_KEY is required, and only when documents need
// OCR; validation of that is deferred to first use so vector-only
// documents process without any key.
func LoadConfig() (*Config, error) {
	config := &Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIAPIBaseURL: os.Getenv("OPENAI_API_BASE_URL"),
		OCRModel:         getEnvOrDefault("OCR_MODEL", "gpt-4o-mini"),
		OCRMaxTokens:     parseIntEnv("OCR_MAX_TOKENS", 2000),
		OCRTimeout:       parseSecondsEnv("OCR_TIMEOUT_SECONDS", 60*time.Second),

		MaxRetries: parseIntEnv("MAX_RETRIES", 1),
		RetryDelay: parseSecondsEnv("RETRY_DELAY_SECONDS", 2*time.Second),

		MaxConcurrent: parseIntEnv("MAX_CONCURRENT", 4),
		MaxPages:      parseIntEnv("MAX_PAGES", 50),
		MaxFileSize:   parseInt64Env("MAX_FILE_SIZE", 50*1024*1024),

		DatabasePath: os.Getenv("DATABASE_PATH"),
		PolicyPath:   os.Getenv("EXTRACTION_POLICY_PATH"),

		LogFilePath: getEnvOrDefault("LOG_FILE", "extractor.log"),
		DevMode:     os.Getenv("DEV_MODE") == "true",
	}

	if config.MaxConcurrent < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT must be at least 1, got %d", config.MaxConcurrent)
	}
	if config.MaxRetries < 0 {
		return nil, fmt.Errorf("MAX_RETRIES must not be negative, got %d", config.MaxRetries)
	}

	return config, nil
}

// GetHTTPClient returns an HTTP client with the given timeout for calls to
// the external OCR service.
func GetHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
