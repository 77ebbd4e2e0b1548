package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(providerCallsTotal, providerLatencyMs)
}

var (
	providerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Provider API calls by outcome (success/failure/error).",
		},
		[]string{"provider", "outcome"},
	)

	providerLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_latency_ms",
			Help:    "Provider call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider"},
	)
)

func ObserveProviderCall(provider, outcome string, elapsed time.Duration) {
	providerCallsTotal.WithLabelValues(norm(provider), norm(outcome)).Inc()
	providerLatencyMs.WithLabelValues(norm(provider)).Observe(float64(elapsed.Milliseconds()))
}
