// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package services adapts Chatstat components to suture.Service.

Each wrapper turns a component's own lifecycle into suture's
context-aware Serve method:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server, converting ListenAndServe to Serve
  - Drains open requests on cancel, bounded by SHUTDOWN_TIMEOUT

Dataset Refresher (CacheRefreshService):
  - Ticks at DATASET_REFRESH_INTERVAL and calls RefreshExpired
  - Reloads expired event and report-index snapshots off the request path
  - Logs failures and retries on the next tick; the last good snapshot stays

The report event subscriber in internal/events implements suture.Service
itself and is added to the messaging layer directly.

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), treeCfg)

	tree.AddDataService(services.NewCacheRefreshService(data, cfg.Dataset.RefreshInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor tree error")
	}

# Error Handling

Return values decide what the supervisor does next:

	nil         -> stopped cleanly, not restarted
	error       -> crashed, restarted with backoff
	ctx.Err()   -> shutdown requested, normal termination

# Service Identification

Every wrapper implements fmt.Stringer, so suture log lines name the
service ("http-server", "dataset-refresher").
*/
package services
