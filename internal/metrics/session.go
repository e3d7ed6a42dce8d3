// Package metrics exposes Prometheus metrics for search sessions and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kensaku"

// SessionMonitor records session activity as Prometheus metrics.
// It satisfies session.Monitor.
type SessionMonitor struct {
	submitted   prometheus.Counter
	superseded  prometheus.Counter
	searches    prometheus.Counter
	duration    prometheus.Histogram
	results     prometheus.Histogram
	indexSize   prometheus.Gauge
	rebuilds    prometheus.Counter
	suggestions prometheus.Counter
}

// NewSessionMonitor creates a monitor and registers its collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewSessionMonitor(reg prometheus.Registerer) *SessionMonitor {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &SessionMonitor{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_submitted_total",
			Help:      "Raw queries submitted to the session",
		}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_superseded_total",
			Help:      "Submitted queries replaced before their debounce window closed",
		}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed search executions",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search execution time in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
		}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Documents in the current index",
		}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_rebuilds_total",
			Help:      "Index rebuilds",
		}),
		suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_served_total",
			Help:      "Suggestions returned to callers",
		}),
	}
	reg.MustRegister(m.submitted, m.superseded, m.searches, m.duration, m.results,
		m.indexSize, m.rebuilds, m.suggestions)
	return m
}

func (m *SessionMonitor) QuerySubmitted(_ string) {
	m.submitted.Inc()
}

func (m *SessionMonitor) QuerySuperseded(_ string) {
	m.superseded.Inc()
}

func (m *SessionMonitor) SearchCompleted(_ string, results int, elapsed time.Duration) {
	m.searches.Inc()
	m.duration.Observe(elapsed.Seconds())
	m.results.Observe(float64(results))
}

func (m *SessionMonitor) IndexRebuilt(documents int) {
	m.rebuilds.Inc()
	m.indexSize.Set(float64(documents))
}

func (m *SessionMonitor) SuggestionsServed(count int) {
	m.suggestions.Add(float64(count))
}
