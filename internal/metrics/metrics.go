// Package metrics exposes Prometheus instrumentation for sync runs, the
// store and the stream proxy.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_sync_runs_total",
			Help: "Total number of sync runs by outcome",
		},
		[]string{"outcome"}, // "complete", "failed", "cancelled"
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streamhub_sync_duration_seconds",
			Help:    "Duration of complete sync runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	SyncStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamhub_sync_stage_duration_seconds",
			Help:    "Duration of each sync stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	SyncInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamhub_sync_in_progress",
			Help: "1 while a sync run is active",
		},
	)

	RowsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_rows_saved_total",
			Help: "Total number of catalog rows upserted",
		},
		[]string{"table"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_records_skipped_total",
			Help: "Total number of remote records skipped during normalization",
		},
		[]string{"table"},
	)

	BatchStatements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_batch_statements_total",
			Help: "Total number of batch upsert statements executed",
		},
		[]string{"table"},
	)

	RemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_remote_requests_total",
			Help: "Total number of remote catalog requests by action and status",
		},
		[]string{"action", "status"},
	)

	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamhub_proxy_requests_total",
			Help: "Total number of forwarded stream requests by upstream status",
		},
		[]string{"status"},
	)

	ProxyFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streamhub_proxy_fallbacks_total",
			Help: "Total number of playback URLs returned unproxied because the local port was unavailable",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamhub_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	ProgressSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamhub_progress_subscribers",
			Help: "Current number of progress stream subscribers",
		},
	)
)

// RecordSyncRun records the outcome of one run. Duration is only observed for complete runs.
func RecordSyncRun(outcome string, duration time.Duration) {
	SyncRuns.WithLabelValues(outcome).Inc()
	if outcome == "complete" {
		SyncDuration.Observe(duration.Seconds())
	}
}

// RecordStage records how long a sync stage took.
func RecordStage(stage string, duration time.Duration) {
	SyncStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordNormalized records rows produced and records skipped for a table.
func RecordNormalized(table string, saved, skipped int) {
	RowsSaved.WithLabelValues(table).Add(float64(saved))
	if skipped > 0 {
		RecordsSkipped.WithLabelValues(table).Add(float64(skipped))
	}
}

// RecordBatch counts one executed batch statement.
func RecordBatch(table string, _ int) {
	BatchStatements.WithLabelValues(table).Inc()
}

// RecordRemoteRequest counts one remote call. A zero status means a transport failure.
func RecordRemoteRequest(action string, status int) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	RemoteRequests.WithLabelValues(action, label).Inc()
}

// RecordProxyRequest counts one forwarded request.
func RecordProxyRequest(status int) {
	ProxyRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordAPIRequest observes one API request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// TrackSyncInProgress flips the in-progress gauge.
func TrackSyncInProgress(active bool) {
	if active {
		SyncInProgress.Set(1)
		return
	}
	SyncInProgress.Set(0)
}
