package config

import (
	"os"
	"strconv"

	"autopipe/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port   string
	APIKey string
}

// StorageConfig holds file storage and encryption settings
type StorageConfig struct {
	UploadDir string
	MasterKey string
}

// AnalysisConfig bounds the analysis service
type AnalysisConfig struct {
	MaxConcurrent int64
	MaxUploadMB   int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:   getEnvOrDefault("PORT", "8080"),
			APIKey: os.Getenv("API_KEY"),
		},
		Storage: StorageConfig{
			UploadDir: getEnvOrDefault("UPLOAD_DIR", "uploads"),
			MasterKey: os.Getenv("MASTER_KEY"),
		},
		Analysis: AnalysisConfig{
			MaxConcurrent: getEnvInt64OrDefault("MAX_CONCURRENT_ANALYSES", 4),
			MaxUploadMB:   getEnvInt64OrDefault("MAX_UPLOAD_MB", 64),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if c.Storage.MasterKey == "" {
		return errors.ConfigInvalid("MASTER_KEY is required for at-rest encryption")
	}
	if c.Analysis.MaxConcurrent < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_ANALYSES must be at least 1")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64OrDefault(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
