package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the collectors the service reports through /metrics.
type Metrics struct {
	// Issued counts UIDs written to clients, by operation (generate, encode).
	Issued *prometheus.CounterVec
	// WriteErrors counts failed response writes, usually clients going away.
	WriteErrors prometheus.Counter
	// RateLimited counts requests rejected with 429.
	RateLimited prometheus.Counter
	// RequestDuration observes handler latency by route.
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Issued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dicomuid_issued_total",
			Help: "Total number of UIDs written to clients",
		}, []string{"op"}),
		WriteErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "dicomuid_write_errors_total",
			Help: "Total number of failed response writes",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "dicomuid_rate_limited_total",
			Help: "Total number of requests rejected by the per-client rate limit",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dicomuid_request_duration_seconds",
			Help:    "Duration of UID requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
