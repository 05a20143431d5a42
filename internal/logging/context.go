// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userKeyKey   contextKey = "user_key"
	reportKeyKey contextKey = "report_key"
)

// GenerateRequestID returns a short random id suitable for log correlation.
func GenerateRequestID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID attaches a request id to ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithUser attaches the caller's user key to ctx.
func ContextWithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKeyKey, user)
}

// UserFromContext returns the caller's user key, or "".
func UserFromContext(ctx context.Context) string {
	u, _ := ctx.Value(userKeyKey).(string)
	return u
}

// ContextWithReportKey tags ctx with the report being generated.
func ContextWithReportKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, reportKeyKey, key)
}

// Ctx returns the global logger enriched with whatever request_id, user
// and report_key values ctx carries.
//
//	logging.Ctx(ctx).Info().Msg("Preview built")
func Ctx(ctx context.Context) *zerolog.Logger {
	lc := Logger().With()
	if id := RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if u := UserFromContext(ctx); u != "" {
		lc = lc.Str("user", u)
	}
	if k, ok := ctx.Value(reportKeyKey).(string); ok && k != "" {
		lc = lc.Str("report_key", k)
	}
	l := lc.Logger()
	return &l
}
