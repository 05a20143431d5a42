// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metadata"
	"github.com/tomtom215/chatstat/internal/models"
	"github.com/tomtom215/chatstat/internal/report"
	"github.com/tomtom215/chatstat/internal/storage"
	"github.com/tomtom215/chatstat/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeLinkExpired     = "LINK_EXPIRED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeDataUnavailable = "DATA_UNAVAILABLE"
	ErrCodeStorage         = "STORAGE_ERROR"
	ErrCodeRender          = "RENDER_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue escapes control characters so request-derived strings
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope.
func respondSuccess(w http.ResponseWriter, data interface{}, took time.Duration, cached bool) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: took.Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError sends an error response. err, when set, is logged and never
// shown to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondFailure maps an error from the domain packages onto the error
// taxonomy: validation 400, missing 404, dataset 503, render 500, storage
// 502.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, apiErr.Message, apiErr.Details, nil)
	case errors.Is(err, metadata.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found", nil, nil)
	case errors.Is(err, report.ErrDataUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeDataUnavailable, "Dataset is not available", nil, err)
	case errors.Is(err, report.ErrRender):
		respondError(w, r, http.StatusInternalServerError, ErrCodeRender, "Failed to render report", nil, err)
	case errors.Is(err, report.ErrStorage):
		respondError(w, r, http.StatusBadGateway, ErrCodeStorage, "Report storage failed", nil, err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal error", nil, err)
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil, nil)
		return false
	}
	return true
}
