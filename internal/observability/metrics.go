package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_tsp_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// CacheHits tracks cache hits
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_tsp_cache_hits_total",
			Help: "Number of cache hits",
		},
		[]string{"operation"},
	)

	// FilingAttempts tracks filing attempts by obligation, payment mode and outcome
	FilingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_tsp_filing_attempts_total",
			Help: "Number of filing attempts",
		},
		[]string{"obligation", "mode", "outcome"},
	)

	// ExternalCalls tracks calls to the tax authority API
	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_tsp_external_calls_total",
			Help: "Number of external tax authority API calls",
		},
		[]string{"endpoint", "status"},
	)

	// NotificationsSent tracks WhatsApp notifications by outcome
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_tsp_notifications_total",
			Help: "Number of WhatsApp notifications dispatched",
		},
		[]string{"status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_tsp_active_connections",
			Help: "Number of active connections",
		},
	)
)
