package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

// Load loads configuration env-over-defaults, reading an optional .env
// file via godotenv. There is no file- or database-backed config tier;
// defaults plus environment variables are the only sources.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Host = getEnvStr("LANGPATROL_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("LANGPATROL_PORT", cfg.Server.Port)
	cfg.Server.LogLevel = getEnvStr("LANGPATROL_LOG_LEVEL", cfg.Server.LogLevel)

	cfg.LogRotation.LogDir = getEnvStr("LANGPATROL_LOG_DIR", cfg.LogRotation.LogDir)
	cfg.LogRotation.MaxSizeMB = getEnvInt("LANGPATROL_LOG_MAX_SIZE_MB", cfg.LogRotation.MaxSizeMB)
	cfg.LogRotation.MaxBackups = getEnvInt("LANGPATROL_LOG_MAX_BACKUPS", cfg.LogRotation.MaxBackups)
	cfg.LogRotation.MaxAgeDays = getEnvInt("LANGPATROL_LOG_MAX_AGE_DAYS", cfg.LogRotation.MaxAgeDays)
	cfg.LogRotation.Compress = getEnvBool("LANGPATROL_LOG_COMPRESS", cfg.LogRotation.Compress)

	cfg.Cloud.DefaultAPIBaseURL = getEnvStr("LANGPATROL_CLOUD_BASE_URL", cfg.Cloud.DefaultAPIBaseURL)
	cfg.Cloud.ModelMetadataPath = getEnvStr("LANGPATROL_MODEL_METADATA_PATH", cfg.Cloud.ModelMetadataPath)
}
