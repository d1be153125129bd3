package agro

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for API requests
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the request collectors and registers them with reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agro",
				Name:      "requests_total",
				Help:      "Agro API requests by resource, method and outcome.",
			},
			[]string{"resource", "method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agro",
				Name:      "request_duration_seconds",
				Help:      "Agro API request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource", "method"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(resource, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(resource, method, outcome).Inc()
	m.duration.WithLabelValues(resource, method).Observe(d.Seconds())
}
