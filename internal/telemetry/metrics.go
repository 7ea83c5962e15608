package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slot_service_http_requests_total",
		Help: "HTTP requests by method, endpoint and status code.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slot_service_http_request_duration_seconds",
		Help:    "HTTP request latency by method, endpoint and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	SlotActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slot_service_actions_total",
		Help: "Slot management actions by action code and outcome.",
	}, []string{"action", "outcome"})
)
