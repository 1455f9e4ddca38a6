package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry - Everything this service exports on /metrics
var Registry = prometheus.NewRegistry()

var (
	// Latency buckets in seconds, from 100µs up to 5s
	latencyBuckets = []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

	SearchRequests = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lsasearch_search_requests_total",
			Help: "Backend searches by outcome",
		},
		[]string{"outcome"}, // ok, cached, error
	)

	SearchLatency = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lsasearch_search_latency_seconds",
			Help:    "Backend search latency in seconds",
			Buckets: latencyBuckets,
		},
	)

	Submissions = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lsasearch_submissions_total",
			Help: "Search page submissions by outcome",
		},
		[]string{"outcome"}, // rendered, stale, failed
	)

	IndexedDocuments = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lsasearch_indexed_documents",
			Help: "Documents in the vector index",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
