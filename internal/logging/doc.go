// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package logging provides centralized zerolog-based structured logging for Chatstat.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once at startup
//   - JSON output for production, console output for development
//   - Context-aware logging carrying request_id, user and report_key
//   - A rotating file sink via lumberjack
//   - An slog adapter for suture and a watermill adapter for the event bus
//
// # Quick Start
//
//	import "github.com/tomtom215/chatstat/internal/logging"
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("dataset", "events").Int("rows", n).Msg("Dataset snapshot loaded")
//	logging.Warn().Err(err).Msg("Shortener unavailable, keeping long URL")
//
// # Configuration
//
// Environment variables, mapped through internal/config:
//
//	LOG_LEVEL        - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT       - json, console (default: json)
//	LOG_CALLER       - include caller file:line (default: false)
//	LOG_FILE         - also write JSON logs to this file
//	LOG_MAX_SIZE_MB  - rotate the file at this size
//	LOG_MAX_BACKUPS  - rotated files to keep
//	LOG_MAX_AGE      - days to keep rotated files
//	LOG_COMPRESS     - gzip rotated files
//
// Programmatic configuration:
//
//	logging.Init(logging.Config{
//	    Level:     "debug",
//	    Format:    "console",
//	    Caller:    true,
//	    Timestamp: true,
//	    Output:    os.Stderr,
//	    File: logging.FileConfig{
//	        Path:      "/var/log/chatstat/chatstat.log",
//	        MaxSizeMB: 100,
//	    },
//	})
//
// # Structured Logging
//
// Always terminate event chains with Msg or Send:
//
//	logging.Info().Str("key", "value").Msg("message")  // written
//	logging.Info().Str("key", "value")                 // never written
//
// Prefer typed fields over formatted messages:
//
//	logging.Info().
//	    Str("format", res.Format).
//	    Int("rows", len(res.Rows)).
//	    Dur("took", time.Since(start)).
//	    Msg("Report generated")
//
// # Context-Aware Logging
//
// The request middleware stores a request id and the caller's user key in
// the request context; the report engine adds the report key. Ctx copies
// whichever of them are present onto the logger:
//
//	ctx = logging.ContextWithReportKey(ctx, key)
//	logging.Ctx(ctx).Info().Msg("Report stored")
//	// {"level":"info","request_id":"1f2e3d4c","user":"parent@example.com","report_key":"...","message":"Report stored"}
//
// # Component Loggers
//
//	log := logging.WithComponent("seed")
//	log.Info().Msg("Generating events")
//
// # Adapters
//
//	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), cfg)
//	pubsub := gochannel.NewGoChannel(gochannel.Config{}, logging.NewWatermillAdapter())
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. Init and SetLogger
// swap the global logger under a sync.RWMutex; Init also closes the
// previous file sink.
//
// # Testing
//
//	var buf bytes.Buffer
//	logging.SetLogger(logging.NewTestLogger(&buf))
//	// ... exercise code ...
//	if !strings.Contains(buf.String(), `"dataset":"events"`) { ... }
package logging
