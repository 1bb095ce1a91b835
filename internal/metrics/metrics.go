// Package metrics provides Prometheus metrics for the drive workspace.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	storeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irondrive_store_requests_total",
			Help: "Total number of remote store calls",
		},
		[]string{"op", "status"},
	)

	storeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "irondrive_store_request_duration_seconds",
			Help:    "Remote store call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irondrive_uploads_total",
			Help: "Total number of upload operations by outcome",
		},
		[]string{"status"},
	)

	uploadedFilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irondrive_uploaded_files_total",
			Help: "Total number of files accepted by completed uploads",
		},
	)

	staleRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "irondrive_stale_refreshes_total",
			Help: "Listing responses discarded because a newer one was applied",
		},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "irondrive_notifications_total",
			Help: "Total number of notifications queued by severity",
		},
		[]string{"severity"},
	)

	activeWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "irondrive_active_workspaces",
			Help: "Number of open workspace sessions",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStoreCall records the outcome and latency of a remote store call.
func RecordStoreCall(op string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	storeRequestsTotal.WithLabelValues(op, status).Inc()
	storeRequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordUpload records a finished upload operation.
func RecordUpload(err error, files int) {
	if err != nil {
		uploadsTotal.WithLabelValues("failed").Inc()
		return
	}
	uploadsTotal.WithLabelValues("ok").Inc()
	uploadedFilesTotal.Add(float64(files))
}

// RecordStaleRefresh counts a discarded out-of-order listing.
func RecordStaleRefresh() {
	staleRefreshesTotal.Inc()
}

// RecordNotification counts a queued notification.
func RecordNotification(severity string) {
	notificationsTotal.WithLabelValues(severity).Inc()
}

// WorkspaceOpened and WorkspaceClosed track open sessions.
func WorkspaceOpened() { activeWorkspaces.Inc() }
func WorkspaceClosed() { activeWorkspaces.Dec() }
