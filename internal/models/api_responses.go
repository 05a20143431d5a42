// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package models

import (
	"time"
)

// APIResponse is the envelope returned by every JSON endpoint.
//
// Status field values:
//   - "success": see Data
//   - "error": see Error
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"no_data": false, "count": 12, "delta": 3},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 4, "cached": true}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information for a response.
// QueryTimeMS is 0 when the payload was served from the response cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError describes a failed request.
//
// Common codes:
//   - VALIDATION_ERROR: request rejected before any work was done
//   - UNAUTHORIZED: missing caller key
//   - NOT_FOUND: unknown saved report or file
//   - STORAGE_ERROR: artifact upload or presign failed
//   - DATA_UNAVAILABLE: dataset could not be loaded
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
