package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effisocial_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "effisocial_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Realtime metrics
	OnlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "effisocial_online_users",
			Help: "Number of users with at least one joined realtime session",
		},
	)

	RealtimeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "effisocial_realtime_sessions",
			Help: "Number of open WebSocket sessions",
		},
	)

	RealtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "effisocial_realtime_events_total",
			Help: "Total number of realtime frames emitted by event",
		},
		[]string{"event"},
	)

	RealtimeDroppedSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "effisocial_realtime_dropped_sessions_total",
			Help: "Sessions closed because their outbound buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(OnlineUsers)
	prometheus.MustRegister(RealtimeSessions)
	prometheus.MustRegister(RealtimeEventsTotal)
	prometheus.MustRegister(RealtimeDroppedSessions)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
