// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/chatstat/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", router.handler.Health)

		// Signed links carry their own authorization.
		r.With(router.chiMiddleware.RateLimit()).Get("/files/*", router.handler.DownloadFile)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(middleware.UserKey)

			r.Get("/profile", router.handler.Profile)

			r.Route("/options", func(r chi.Router) {
				r.Get("/members", router.handler.MemberOptions)
				r.Get("/platforms", router.handler.PlatformOptions)
				r.Get("/alerts", router.handler.AlertOptions)
			})

			r.Route("/kpi", func(r chi.Router) {
				r.Get("/alerts", router.handler.AlertKPI)
				r.Get("/platforms", router.handler.PlatformKPI)
			})

			r.Route("/charts", func(r chi.Router) {
				r.Get("/classification", router.handler.ClassificationChart)
				r.Get("/categories", router.handler.CategoriesChart)
				r.Get("/content-risk", router.handler.ContentRiskChart)
				r.Get("/comment-trend", router.handler.CommentTrendChart)
				r.Get("/comment-classification", router.handler.CommentClassificationChart)
			})

			r.Get("/slider", router.handler.Slider)
			r.Get("/overview", router.handler.Overview)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", router.handler.ListReports)
				r.Post("/preview", router.handler.PreviewReport)
				r.Get("/{key}/preview", router.handler.ReplayReport)

				r.Group(func(r chi.Router) {
					r.Use(router.chiMiddleware.RateLimitReports())
					r.Post("/", router.handler.GenerateReport)
					r.Post("/download", router.handler.DownloadReport)
				})
			})
		})
	})

	return r
}
