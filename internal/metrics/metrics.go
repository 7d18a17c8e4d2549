// Package metrics provides Prometheus metrics for ingestion runs and search.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeError     = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	SearchRequests *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	SearchResults  prometheus.Histogram
}

// New registers every metric on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studynotes_pipeline_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studynotes_pipeline_run_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17min
		}),
		SearchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "studynotes_search_requests_total",
			Help: "Search requests by search type",
		}, []string{"search_type"}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studynotes_search_duration_seconds",
			Help:    "Duration of search requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "studynotes_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
	}
}

func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSearch(searchType string, results int, elapsed time.Duration) {
	m.SearchRequests.WithLabelValues(searchType).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
	m.SearchResults.Observe(float64(results))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
