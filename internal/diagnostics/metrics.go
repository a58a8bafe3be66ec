package diagnostics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects request and deadlock counters of the dlex endpoints.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	deadlocks prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlex",
			Name:      "requests_total",
			Help:      "Handled dlex requests by endpoint and result code.",
		}, []string{"endpoint", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dlex",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving dlex requests.",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2, 3, 5, 10},
		}, []string{"endpoint"}),
		deadlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dlex",
			Name:      "deadlocks_total",
			Help:      "Operations aborted by the database to resolve a deadlock.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.deadlocks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one handled request. result is the envelope code as text.
func (m *Metrics) ObserveRequest(endpoint, result string, d time.Duration) {
	m.requests.WithLabelValues(endpoint, result).Inc()
	m.duration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) IncDeadlock() {
	m.deadlocks.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
