// Package metrics provides the centralized Prometheus metrics registry for
// the connector toolkit. All metrics are defined in their respective packages
// (stream, statestore, quota) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the connector toolkit.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Stream Metrics (pkg/stream):
//   - stream_requests_total{source, status} (Counter): Total requests by source and HTTP status
//   - stream_request_duration_seconds{source} (Histogram): Request duration by source
//   - stream_pages_total{source} (Counter): Pages fetched by source
//   - stream_records_total{source} (Counter): Records yielded by source
//   - stream_retries_total{source} (Counter): Retry attempts by source
//   - stream_retry_backoff_seconds{source} (Histogram): Backoff duration by source
//   - stream_retry_exhausted_total{source} (Counter): Reads that exhausted max retries
//
// State Store Metrics (pkg/statestore):
//   - statestore_reads_total{result} (Counter): State reads by result (hit, miss)
//   - statestore_writes_total (Counter): State snapshots persisted
//   - statestore_errors_total{operation} (Counter): State store operation errors
//
// Quota Metrics (pkg/quota):
//   - quota_remaining{source} (Gauge): Remaining API request budget by source
//   - quota_blocks_total{source} (Counter): Requests blocked due to critical quota
//   - quota_throttles_total{source} (Counter): Requests throttled due to low quota
//
// Example Prometheus Queries:
//
//   # Records per second by source
//   rate(stream_records_total[5m])
//
//   # Retry Rate
//   rate(stream_retries_total[5m]) / rate(stream_requests_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(stream_request_duration_seconds_bucket[5m]))
//
//   # State Resume Hit Rate
//   sum(rate(statestore_reads_total{result="hit"}[5m])) /
//   sum(rate(statestore_reads_total[5m]))
//
//   # Quota Pressure
//   quota_remaining < 20
