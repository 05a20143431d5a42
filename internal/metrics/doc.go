// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package metrics registers the Prometheus collectors exposed at /metrics.

All collectors are created with promauto against the default registerer, so
importing the package is enough to expose them.

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Dataset cache:
  - dataset_loads_total{dataset,result}
  - dataset_load_duration_seconds{dataset}
  - dataset_rows{dataset}
  - dataset_last_success_timestamp{dataset}
  - dataset_stale_serves_total{dataset}

Response cache:
  - cache_hits_total, cache_misses_total, cache_entries, cache_evictions_total
    (label cache_type)

Reports and storage:
  - reports_generated_total{format}
  - report_generation_duration_seconds{format}
  - report_generation_errors_total{stage}
  - report_rows
  - storage_operation_duration_seconds{backend,operation}
  - storage_errors_total{backend,operation}
  - shortener_requests_total{result}

Resilience and events:
  - circuit_breaker_state{name}, circuit_breaker_state_transitions_total
  - events_published_total{topic}, events_handled_total{topic,result}
*/
package metrics
