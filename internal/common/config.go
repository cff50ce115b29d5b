package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Vision   VisionConfig
	LLM      LLMConfig
	OCR      OCRConfig
}

// DatabaseConfig holds the local store configuration
type DatabaseConfig struct {
	Path string
}

// VisionConfig holds the cloud text-detection configuration
type VisionConfig struct {
	APIKey     string
	MaxResults int
}

// LLMConfig holds the Gemini configuration
type LLMConfig struct {
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// OCRConfig holds the on-device OCR configuration
type OCRConfig struct {
	Language    string
	TessdataDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./conferente.db"),
		},
		Vision: VisionConfig{
			APIKey:     getEnv("GOOGLE_VISION_API_KEY", ""),
			MaxResults: getEnvAsInt("VISION_MAX_RESULTS", 5),
		},
		LLM: LLMConfig{
			Model:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Timeout:    getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
			MaxRetries: getEnvAsInt("GEMINI_RETRIES", 5),
		},
		OCR: OCRConfig{
			Language:    getEnv("OCR_LANGUAGE", "por"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks that the configuration can run the full cascade. The
// offline tiers still work without API keys, so only the path is mandatory.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrInvalidInput)
	}
	return nil
}
