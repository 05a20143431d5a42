// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateHTTPURL checks an absolute http(s) URL with a host. Paths are
// allowed; query strings are not.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

// validateS3Endpoint checks a bare host[:port] endpoint as minio-go expects.
func validateS3Endpoint(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required when STORAGE_BACKEND=s3")
	}
	if strings.Contains(endpoint, "://") {
		return fmt.Errorf("S3_ENDPOINT must be host[:port] without a scheme, got: %s", endpoint)
	}
	if strings.ContainsAny(endpoint, "/?") {
		return fmt.Errorf("S3_ENDPOINT must not contain a path, got: %s", endpoint)
	}
	return nil
}
