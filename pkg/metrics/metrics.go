package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	Published = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_notifications_published_total",
			Help: "Messages accepted and published to the exchange",
		},
		[]string{"channel"},
	)

	Duplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_notifications_duplicate_total",
			Help: "Requests rejected by the idempotency guard",
		},
	)

	PublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_publish_failures_total",
			Help: "Publish attempts that failed at the broker",
		},
		[]string{"channel"},
	)

	StatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_status_updates_total",
			Help: "Status tracker writes by resulting state",
		},
		[]string{"state"},
	)
)

// Init registers all gateway collectors with the default registry. Call once
// at startup.
func Init() {
	prometheus.MustRegister(
		RequestCount,
		RequestDuration,
		Published,
		Duplicates,
		PublishFailures,
		StatusUpdates,
	)
}
