// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chatstat/config.yaml",
	"/etc/chatstat/config.yml",
}

const (
	// ConfigPathEnvVar overrides the config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotEnvPathEnvVar overrides the .env file path.
	DotEnvPathEnvVar = "DOTENV_PATH"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8050,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Storage: StorageConfig{
			Backend:    "badger",
			Timeout:    30 * time.Second,
			PresignTTL: 900 * time.Second,
			S3: S3Config{
				Region: "us-east-1",
				UseSSL: true,
			},
			Badger: BadgerConfig{
				Path: "/data/chatstat",
			},
		},
		Dataset: DatasetConfig{
			Source:          "csv",
			Key:             "dataset/data.csv",
			Timezone:        "UTC",
			TTL:             12 * time.Hour,
			LoadTimeout:     2 * time.Minute,
			RefreshInterval: time.Minute,
		},
		Report: ReportConfig{
			Timeout:         2 * time.Minute,
			DefaultFormat:   "xlsx",
			PreviewPageSize: 4,
		},
		Shortener: ShortenerConfig{
			Enabled:  true,
			Endpoint: "https://tinyurl.com/api-create.php",
			Timeout:  10 * time.Second,
			Attempts: 2,
			Backoff:  500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			ReportRateLimit: 10,
		},
	}
}

// LoadWithKoanf layers struct defaults, an optional YAML file and the
// environment, then validates the result. A .env file is loaded into the
// process environment first; variables already set win.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads DOTENV_PATH, or ./.env when present. A missing default
// file is not an error; a missing explicit file is.
func loadDotEnv() error {
	if path := os.Getenv(DotEnvPathEnvVar); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment names to config paths. Unmapped
// variables are ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",
	"public_url":       "server.public_url",

	"log_level":       "logging.level",
	"log_format":      "logging.format",
	"log_caller":      "logging.caller",
	"log_file":        "logging.file",
	"log_max_size_mb": "logging.max_size_mb",
	"log_max_backups": "logging.max_backups",
	"log_max_age":     "logging.max_age_days",
	"log_compress":    "logging.compress",

	"storage_backend":  "storage.backend",
	"storage_timeout":  "storage.timeout",
	"presign_ttl":      "storage.presign_ttl",
	"s3_endpoint":      "storage.s3.endpoint",
	"s3_access_key":    "storage.s3.access_key",
	"s3_secret_key":    "storage.s3.secret_key",
	"s3_bucket":        "storage.s3.bucket",
	"s3_region":        "storage.s3.region",
	"s3_use_ssl":       "storage.s3.use_ssl",
	"badger_path":      "storage.badger.path",
	"badger_in_memory": "storage.badger.in_memory",

	"download_signing_key": "storage.badger.signing_key",

	"dataset_source":           "dataset.source",
	"dataset_key":              "dataset.key",
	"dataset_path":             "dataset.path",
	"dataset_timezone":         "dataset.timezone",
	"dataset_ttl":              "dataset.ttl",
	"dataset_load_timeout":     "dataset.load_timeout",
	"dataset_refresh_interval": "dataset.refresh_interval",

	"report_timeout":           "report.timeout",
	"report_default_format":    "report.default_format",
	"report_preview_page_size": "report.preview_page_size",

	"shortener_enabled":  "shortener.enabled",
	"shortener_endpoint": "shortener.endpoint",
	"shortener_timeout":  "shortener.timeout",
	"shortener_attempts": "shortener.attempts",
	"shortener_backoff":  "shortener.backoff",

	"cache_enabled": "cache.enabled",
	"cache_ttl":     "cache.ttl",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"report_rate_limit":   "security.report_rate_limit",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc maps S3_BUCKET to storage.s3.bucket and so on.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
