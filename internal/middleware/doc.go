// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package middleware provides the HTTP middleware shared by every API route.

Key Components:

  - RequestID: reuses or generates X-Request-ID and stores it for logging
  - PrometheusMetrics: request count, duration and in-flight gauge, labelled
    by chi route pattern
  - UserKey: requires the X-User-Key caller header and stores it in context

All components have the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Use(middleware.UserKey)
	    r.Get("/profile", h.Profile)
	})

Handlers read the caller with logging.UserFromContext and the request id with
logging.RequestIDFromContext; logging.Ctx(ctx) attaches both to log events.

See Also:

  - internal/api: routes and handlers wrapped by this middleware
  - internal/metrics: Prometheus metric definitions
*/
package middleware
