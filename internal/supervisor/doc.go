// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package supervisor provides process supervision for Chatstat using suture v4.

Long-running services are organized into three layers so that a failure in
one layer never takes down the others:

	RootSupervisor ("chatstat")
	├── DataSupervisor ("data-layer")
	│   └── CacheRefreshService: reloads dataset snapshots past their TTL
	├── MessagingSupervisor ("messaging-layer")
	│   └── events.Subscriber: refreshes the report index after each report
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff policy. A broken event
subscriber keeps restarting while the API keeps serving the last snapshot.

Supervisor events are logged through sutureslog using the slog adapter from
internal/logging:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCacheRefreshService(cache, time.Minute))
	tree.AddMessagingService(events.NewSubscriber(bus, events.RefreshIndex(cache)))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)

See Also:

  - internal/supervisor/services: suture.Service wrappers
  - cmd/server: tree construction
*/
package supervisor
