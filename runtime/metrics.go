package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records every request the client sends. A nil registerer keeps
// the collectors unregistered.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	jobs     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qkrt",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests sent to the remote APIs by api and status code.",
		}, []string{"api", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qkrt",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Round trip time of requests to the remote APIs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"api"}),
		jobs: f.NewCounter(prometheus.CounterOpts{
			Namespace: "qkrt",
			Subsystem: "client",
			Name:      "jobs_submitted_total",
			Help:      "Sampler jobs accepted by the quantum API.",
		}),
	}
}
