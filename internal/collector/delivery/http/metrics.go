package http

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collect outcomes.
const (
	resultAccepted      = "accepted"
	resultPublishFailed = "publish_failed"
	resultMalformed     = "malformed"
	resultRejected      = "rejected"
)

// Metrics counts collect requests by outcome.
type Metrics struct {
	hits         *prometheus.CounterVec
	payloadBytes prometheus.Histogram
}

// NewMetrics registers the collector metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hitstream",
			Subsystem: "collector",
			Name:      "hits_total",
			Help:      "Collect requests by outcome.",
		}, []string{"result"}),
		payloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hitstream",
			Subsystem: "collector",
			Name:      "payload_bytes",
			Help:      "Size of accepted hit payloads.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 8),
		}),
	}
	reg.MustRegister(m.hits, m.payloadBytes)
	return m
}

func (m *Metrics) observe(result string) {
	m.hits.WithLabelValues(result).Inc()
}

func (m *Metrics) observePayload(n int) {
	m.payloadBytes.Observe(float64(n))
}
