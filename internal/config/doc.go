// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package config loads chatstat configuration with koanf.

# Configuration Sources

Later sources override earlier ones:

 1. Struct defaults (defaultConfig)
 2. A YAML file: $CONFIG_PATH, else config.yaml, config.yml,
    /etc/chatstat/config.yaml
 3. Environment variables, after a .env file ($DOTENV_PATH or ./.env) has
    been loaded with godotenv

Environment names are flat (S3_BUCKET, DATASET_TTL) and mapped to dotted
paths (storage.s3.bucket, dataset.ttl). Unknown variables are ignored.
CORS_ORIGINS is comma-separated.

# Sections

  - server: listener, timeouts, public base URL for download links
  - logging: level, format, optional rotating file
  - storage: s3 (minio-go) or badger backend, presign TTL
  - dataset: csv object or duckdb file source, snapshot TTL
  - report: generation timeout, default export format
  - shortener: TinyURL endpoint, timeout, retry attempts
  - cache: analytics response cache TTL
  - security: CORS and rate limits

Validate rejects incomplete backends, for example STORAGE_BACKEND=s3 without
S3_BUCKET, or the badger backend without a DOWNLOAD_SIGNING_KEY.
*/
package config
