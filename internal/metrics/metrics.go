package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
	CallsPlaced       *prometheus.CounterVec
	InsufficientFunds prometheus.Counter
	EmergencyAlerts   *prometheus.CounterVec
	Logins            *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status code.",
			}, []string{"route", "status"}),
			HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency distribution for HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"}),
			CallsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_placed_total",
				Help:      "Total calls placed by type and outcome.",
			}, []string{"type", "outcome"}),
			InsufficientFunds: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insufficient_funds_total",
				Help:      "Total call attempts rejected for insufficient balance.",
			}),
			EmergencyAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emergency_alerts_total",
				Help:      "Total emergency alert jobs processed by outcome.",
			}, []string{"outcome"}),
			Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total login attempts by outcome.",
			}, []string{"outcome"}),
		}

		prometheus.MustRegister(
			metricsInstance.HTTPRequests,
			metricsInstance.HTTPLatency,
			metricsInstance.CallsPlaced,
			metricsInstance.InsufficientFunds,
			metricsInstance.EmergencyAlerts,
			metricsInstance.Logins,
		)
	})
	return metricsInstance
}
