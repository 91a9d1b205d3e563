// Package metrics holds the Prometheus collectors of the console.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// InstallerRequestsTotal counts installer calls by operation and outcome
	// ("ok", "validation", or the error kind).
	InstallerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assisted_console_installer_requests_total",
			Help: "Total number of requests sent to the assisted installer",
		},
		[]string{"operation", "outcome"},
	)

	InstallerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assisted_console_installer_request_duration_seconds",
			Help:    "Assisted installer request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assisted_console_http_requests_total",
			Help: "Total number of console HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assisted_console_http_request_duration_seconds",
			Help:    "Console HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ClusterCreations counts cluster creation attempts by result
	ClusterCreations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assisted_console_cluster_creations_total",
			Help: "Total number of cluster creation submissions",
		},
		[]string{"result"},
	)
)

// ObserveInstallerRequest records one installer call
func ObserveInstallerRequest(operation, outcome string, elapsed time.Duration) {
	InstallerRequestsTotal.WithLabelValues(operation, outcome).Inc()
	InstallerRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
