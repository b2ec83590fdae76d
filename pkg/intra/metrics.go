package intra

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts API traffic for one session. All methods are safe on a nil receiver.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	records     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intra_stats",
			Name:      "requests_total",
			Help:      "HTTP requests sent to the intra API by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intra_stats",
			Name:      "rate_limited_total",
			Help:      "Responses with status 429 by endpoint.",
		}, []string{"endpoint"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intra_stats",
			Name:      "records_fetched_total",
			Help:      "Records received from paged endpoints.",
		}, []string{"endpoint"}),
	}
	m.registry.MustRegister(m.requests, m.rateLimited, m.records)
	return m
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteTextfile dumps the counters in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}

func (m *Metrics) observeRequest(endpoint string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeRateLimit(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) observeRecords(endpoint string, n int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(endpoint).Add(float64(n))
}
