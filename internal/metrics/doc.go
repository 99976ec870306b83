// Frontline - Real-Time War Events Situational Awareness
// Copyright 2026 Frontline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frontlinehq/frontline

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package exposes application instrumentation using the Prometheus client
library, covering:
  - Adapter poll cycles and failures
  - Ingestion and deduplication counters
  - Upstream fetch latency and circuit breaker state
  - DuckDB query performance and retention evictions
  - WebSocket broadcast delivery
  - AI summary generation
  - HTTP API latency and throughput

All collectors are registered with the default registry via promauto and served
from the /metrics endpoint.
*/
package metrics
