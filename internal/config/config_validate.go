// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateStorage,
		c.validateDataset,
		c.validateReport,
		c.validateShortener,
		c.validateCache,
		c.validateRateLimits,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.PublicURL != "" {
		return validateHTTPURL(c.Server.PublicURL, "PUBLIC_URL")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive")
	}
	if c.Storage.PresignTTL < time.Second || c.Storage.PresignTTL > 7*24*time.Hour {
		return fmt.Errorf("PRESIGN_TTL must be between 1s and 168h")
	}

	switch c.Storage.Backend {
	case "s3":
		if err := validateS3Endpoint(c.Storage.S3.Endpoint); err != nil {
			return err
		}
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
		if c.Storage.S3.AccessKey == "" || c.Storage.S3.SecretKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when STORAGE_BACKEND=s3")
		}
	case "badger":
		if !c.Storage.Badger.InMemory && c.Storage.Badger.Path == "" {
			return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
		}
		if len(c.Storage.Badger.SigningKey) < 32 {
			return fmt.Errorf("DOWNLOAD_SIGNING_KEY must be at least 32 characters when STORAGE_BACKEND=badger")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: s3, badger")
	}
	return nil
}

func (c *Config) validateDataset() error {
	switch c.Dataset.Source {
	case "csv":
		if c.Dataset.Key == "" {
			return fmt.Errorf("DATASET_KEY is required when DATASET_SOURCE=csv")
		}
	case "duckdb":
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required when DATASET_SOURCE=duckdb")
		}
	default:
		return fmt.Errorf("DATASET_SOURCE must be one of: csv, duckdb")
	}
	if _, err := time.LoadLocation(c.Dataset.Timezone); err != nil {
		return fmt.Errorf("DATASET_TIMEZONE %q is not a known IANA zone: %w", c.Dataset.Timezone, err)
	}
	if c.Dataset.TTL < time.Minute {
		return fmt.Errorf("DATASET_TTL must be at least 1m")
	}
	if c.Dataset.LoadTimeout <= 0 || c.Dataset.RefreshInterval <= 0 {
		return fmt.Errorf("DATASET_LOAD_TIMEOUT and DATASET_REFRESH_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateReport() error {
	if c.Report.Timeout <= 0 {
		return fmt.Errorf("REPORT_TIMEOUT must be positive")
	}
	if c.Report.DefaultFormat != "xlsx" && c.Report.DefaultFormat != "pdf" {
		return fmt.Errorf("REPORT_DEFAULT_FORMAT must be one of: xlsx, pdf")
	}
	if c.Report.PreviewPageSize < 1 {
		return fmt.Errorf("REPORT_PREVIEW_PAGE_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateShortener() error {
	if !c.Shortener.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Shortener.Endpoint, "SHORTENER_ENDPOINT"); err != nil {
		return err
	}
	if c.Shortener.Attempts < 1 || c.Shortener.Attempts > 10 {
		return fmt.Errorf("SHORTENER_ATTEMPTS must be between 1 and 10")
	}
	if c.Shortener.Timeout <= 0 {
		return fmt.Errorf("SHORTENER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.ReportRateLimit < minRateLimitRequests || c.Security.ReportRateLimit > c.Security.RateLimitReqs {
		return fmt.Errorf("REPORT_RATE_LIMIT must be between %d and RATE_LIMIT_REQUESTS", minRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}
