// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package storage provides the object store behind report artifacts, report
metadata and the CSV dataset, plus the dataset sources that read events.

# Backends

  - S3Store: any S3-compatible service through minio-go. Presigned links are
    native S3 presigned GET URLs.
  - BadgerStore: an embedded BadgerDB. Presigned links point at
    DownloadPath on this service and carry an HMAC-SHA256 signature over the
    key and expiry; BadgerStore.Download verifies them.

Open selects a backend from configuration and wraps it with Instrument, which
bounds each call with storage.timeout and records storage_* metrics.

# Dataset Sources

CSVSource reads the dataset object (dataset.key) from the store. DuckDBSource
reads a local CSV or Parquet export (dataset.path). Both produce the same
models.Event rows; timestamps are parsed as UTC.
*/
package storage
