// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package main is the entry point for the Chatstat analytics server.
//
// Chatstat serves dashboard analytics over a snapshot of monitoring events
// (content and comment alerts raised for children's social accounts) and
// generates downloadable XLSX/PDF reports for parents.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml, .env and environment (Koanf v2)
//  2. Object store: MinIO/S3 or embedded BadgerDB
//  3. Dataset cache: event and report-index snapshots, warmed before serving
//  4. Report engine: rendering, storage, metadata and link shortening
//  5. Event bus: report-generated notifications refresh the report index
//  6. HTTP server: chi router with CORS, rate limits and Prometheus metrics
//
// All long-running services run under the suture supervisor tree.
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the tree. The HTTP server drains in-flight
// requests for SHUTDOWN_TIMEOUT before the store is closed.
//
// # Example Usage
//
// Embedded storage, seeded with demo data:
//
//	export STORAGE_BACKEND=badger
//	export BADGER_PATH=./data/objects
//	export DOWNLOAD_SIGNING_KEY=$(openssl rand -hex 32)
//	go run ./cmd/seed --rows 20000 --sample-reports 10
//	go run ./cmd/server
//
// MinIO:
//
//	export STORAGE_BACKEND=s3
//	export S3_ENDPOINT=localhost:9000
//	export S3_ACCESS_KEY=minioadmin
//	export S3_SECRET_KEY=minioadmin
//	export S3_BUCKET=chatstat
//	./chatstat
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/tomtom215/chatstat/internal/api"
	"github.com/tomtom215/chatstat/internal/cache"
	"github.com/tomtom215/chatstat/internal/config"
	"github.com/tomtom215/chatstat/internal/dataset"
	"github.com/tomtom215/chatstat/internal/events"
	"github.com/tomtom215/chatstat/internal/logging"
	"github.com/tomtom215/chatstat/internal/metadata"
	"github.com/tomtom215/chatstat/internal/report"
	"github.com/tomtom215/chatstat/internal/shortener"
	"github.com/tomtom215/chatstat/internal/storage"
	"github.com/tomtom215/chatstat/internal/supervisor"
	"github.com/tomtom215/chatstat/internal/supervisor/services"
)

//nolint:gocyclo // sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
		File: logging.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.CompressOld,
		},
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("storage", cfg.Storage.Backend).
		Str("dataset_source", cfg.Dataset.Source).
		Str("dataset_timezone", cfg.Dataset.Timezone).
		Msg("Starting Chatstat with supervisor tree")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Open(ctx, cfg.Storage, publicURL(cfg))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open object store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing object store")
		}
	}()

	// Dataset timestamps are wall clock in this zone; the server clock follows it.
	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	source, closeSource, err := openDatasetSource(cfg, store, loc)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open dataset source")
	}
	defer closeSource()

	meta := metadata.New(store)

	var responses *cache.Cache
	if cfg.Cache.Enabled {
		responses = cache.New("analytics", cfg.Cache.TTL, time.Minute)
		defer responses.Close()
	}

	data, err := dataset.New(source, meta, dataset.Options{
		TTL:         cfg.Dataset.TTL,
		LoadTimeout: cfg.Dataset.LoadTimeout,
		OnReload: func(name string) {
			// Cached responses were computed from the replaced snapshot.
			if responses != nil {
				responses.Clear()
			}
			logging.Info().Str("snapshot", name).Msg("Dataset snapshot reloaded")
		},
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create dataset cache")
	}

	warmCtx, warmCancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	err = data.WarmUp(warmCtx)
	warmCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load dataset")
	}
	logging.Info().Time("fetched_at", data.FetchedAt()).Msg("Dataset loaded")

	bus := events.NewBus(0)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	engine := report.NewEngine(report.Deps{
		Dataset:   data,
		Objects:   store,
		Metadata:  meta,
		Shortener: shortener.New(cfg.Shortener),
		Notifier:  bus,
	}, report.Options{
		PresignTTL:    cfg.Storage.PresignTTL,
		Timeout:       cfg.Report.Timeout,
		DefaultFormat: cfg.Report.DefaultFormat,
		Now:           clock,
	})

	deps := api.Deps{
		Data:    data,
		Reports: engine,
		Cache:   responses,
		Now:     clock,
	}
	// A typed nil would make the handler believe downloads are served locally.
	if local, ok := storage.LocalDownloads(store); ok {
		deps.Downloads = local
		logging.Info().Str("path", storage.DownloadPath).Msg("Serving signed download links locally")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(cfg, deps)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Report generation may outlast the request timeout.
		WriteTimeout: cfg.Server.Timeout + cfg.Report.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewCacheRefreshService(data, cfg.Dataset.RefreshInterval))
	tree.AddMessagingService(events.NewSubscriber(bus, events.RefreshIndex(data)))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// publicURL is the base of locally served download links.
func publicURL(cfg *config.Config) string {
	if cfg.Server.PublicURL != "" {
		return cfg.Server.PublicURL
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
}

// openDatasetSource returns the configured event source and its cleanup.
func openDatasetSource(cfg *config.Config, store storage.ObjectStore, loc *time.Location) (dataset.Source, func(), error) {
	switch cfg.Dataset.Source {
	case "duckdb":
		src, err := storage.NewDuckDBSource(cfg.Dataset.Path)
		if err != nil {
			return nil, nil, err
		}
		return src.In(loc), func() {
			if err := src.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing duckdb source")
			}
		}, nil
	default:
		return storage.NewCSVSource(store, cfg.Dataset.Key).In(loc), func() {}, nil
	}
}
