package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paint_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paint_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DocumentsCreatedTotal counts committed sales, purchases, payments and manual movements.
	DocumentsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paint_documents_created_total",
			Help: "Committed documents by kind.",
		},
		[]string{"kind"},
	)

	OutboxPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paint_outbox_publish_total",
			Help: "Outbox publish attempts by event type and result.",
		},
		[]string{"event_type", "result"},
	)
)
