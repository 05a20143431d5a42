// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Storage   StorageConfig   `koanf:"storage"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Report    ReportConfig    `koanf:"report"`
	Shortener ShortenerConfig `koanf:"shortener"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production

	// PublicURL is the externally visible base URL, used to build local
	// download links. Empty means http://host:port.
	PublicURL string `koanf:"public_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`

	// File enables a rotating JSON log file alongside stderr.
	File        string `koanf:"file"`
	MaxSizeMB   int    `koanf:"max_size_mb"`
	MaxBackups  int    `koanf:"max_backups"`
	MaxAgeDays  int    `koanf:"max_age_days"`
	CompressOld bool   `koanf:"compress"`
}

// StorageConfig selects and configures the object store.
type StorageConfig struct {
	// Backend is "s3" or "badger".
	Backend string        `koanf:"backend"`
	Timeout time.Duration `koanf:"timeout"`

	// PresignTTL is the lifetime of report download links.
	PresignTTL time.Duration `koanf:"presign_ttl"`

	S3     S3Config     `koanf:"s3"`
	Badger BadgerConfig `koanf:"badger"`
}

// S3Config configures an S3-compatible endpoint.
type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// BadgerConfig configures the embedded object store.
type BadgerConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// SigningKey signs local download links. Required with the badger backend.
	SigningKey string `koanf:"signing_key"`
}

// DatasetConfig configures where monitoring events come from and how long a
// loaded snapshot is trusted.
type DatasetConfig struct {
	// Source is "csv" (object in the store) or "duckdb" (local file).
	Source string `koanf:"source"`

	// Key is the object key of the CSV dataset.
	Key string `koanf:"key"`

	// Path is a local CSV or Parquet file for the duckdb source.
	Path string `koanf:"path"`

	// Timezone is the IANA zone of the dataset's wall-clock timestamps.
	// The server clock, period labels and date ranges all use it.
	Timezone string `koanf:"timezone"`

	TTL             time.Duration `koanf:"ttl"`
	LoadTimeout     time.Duration `koanf:"load_timeout"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// ReportConfig configures report generation.
type ReportConfig struct {
	Timeout         time.Duration `koanf:"timeout"`
	DefaultFormat   string        `koanf:"default_format"`
	PreviewPageSize int           `koanf:"preview_page_size"`
}

// ShortenerConfig configures the link shortener.
type ShortenerConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"`
	Attempts int           `koanf:"attempts"`
	Backoff  time.Duration `koanf:"backoff"`
}

// CacheConfig configures the analytics response cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	ReportRateLimit   int           `koanf:"report_rate_limit"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Load reads configuration from defaults, an optional YAML file, a .env
// file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the service runs in production mode.
// Location resolves Dataset.Timezone, falling back to UTC when it is empty
// or unknown. Validate rejects unknown zones before this is reached.
func (c *Config) Location() *time.Location {
	if c.Dataset.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Dataset.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
