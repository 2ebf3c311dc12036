// Package metrics defines and registers the custom Prometheus metrics of the
// account service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthOperationsTotal counts account operations by outcome.
// Labels:
//   - operation: register, login, logout, refresh, change_password, update_profile, replace_avatar, replace_cover
//   - result: "ok" or the error class (validation, conflict, not_found, unauthorized, upload, internal)
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of account operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Media metrics ─────────────────────────────────────────────────────────────

// MediaUploadsTotal counts uploads to the hosted media store.
// Labels:
//   - provider: "minio" or "s3"
//   - result: "ok" or "error"
var MediaUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_uploads_total",
		Help:      "Total number of media uploads, by provider and result.",
	},
	[]string{"provider", "result"},
)

// MediaUploadDuration measures a single upload from open to stored object.
var MediaUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "media_upload_duration_seconds",
		Help:      "Duration of media uploads to the hosted store.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	},
	[]string{"provider"},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityEventsTotal counts activity events by type and fate.
// Label result: "published", "failed" or "dropped" (buffer full).
var ActivityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_events_total",
		Help:      "Total number of account activity events, by type and result.",
	},
	[]string{"type", "result"},
)

// ActivityQueueDepth tracks the number of events waiting in each worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
