package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map
// build pipeline.
type Metrics struct {
	BuildsTotal     *prometheus.CounterVec // labels: outcome={published,failed}
	BuildDuration   prometheus.Histogram
	LastBuildUnix   prometheus.Gauge
	ObservationsPer prometheus.Histogram
	SpeciesPer      prometheus.Histogram

	// Fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Archive metrics.
	ArtifactsPruned prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BuildsTotal,
		m.BuildDuration,
		m.LastBuildUnix,
		m.ObservationsPer,
		m.SpeciesPer,
		m.FetchRequests,
		m.FetchCache,
		m.ArtifactsPruned,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "birdmap",
			Name:      "builds_total",
			Help:      "Map builds by outcome.",
		}, []string{"outcome"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "birdmap",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete fetch-aggregate-render-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastBuildUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "birdmap",
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time of the last published artifact.",
		}),
		ObservationsPer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "birdmap",
			Name:      "observations_per_build",
			Help:      "Notable observation records per build.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200, 500},
		}),
		SpeciesPer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "birdmap",
			Name:      "species_per_build",
			Help:      "Distinct species per build.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "birdmap",
			Name:      "fetch_requests_total",
			Help:      "eBird API requests by outcome.",
		}, []string{"outcome"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "birdmap",
			Name:      "fetch_cache_total",
			Help:      "Fetch cache lookups by result.",
		}, []string{"result"}),
		ArtifactsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "birdmap",
			Name:      "artifacts_pruned_total",
			Help:      "Archived map artifacts removed by retention pruning.",
		}),
	}
}
