// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/models"
)

// UserKeyHeader names the caller. Every dataset row is owned by the user
// whose key matches this value.
const UserKeyHeader = "X-User-Key"

// maxUserKeyLen bounds the header length.
const maxUserKeyLen = 256

// UserKey rejects requests without a caller key and stores the key in the
// request context, where handlers read it with logging.UserFromContext.
func UserKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(UserKeyHeader))
		if key == "" || len(key) > maxUserKeyLen {
			writeUnauthorized(w)
			return
		}
		ctx := logging.ContextWithUser(r.Context(), key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	body, err := json.Marshal(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    "UNAUTHORIZED",
			Message: UserKeyHeader + " header is required",
		},
	})
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(body)
}
