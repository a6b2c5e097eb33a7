package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the simulator.
type Metrics struct {
	SimulationsStarted   prometheus.Counter
	SimulationsRejected  prometheus.Counter
	SimulationsCompleted *prometheus.CounterVec // labels: outcome={success,error}
	SimulationRunning    prometheus.Gauge

	// Narrative generation metrics.
	NarrativeDuration prometheus.Histogram
	NarrativeCache    *prometheus.CounterVec // labels: result={hit,miss}

	// NEO feed metrics.
	FeedFetches *prometheus.CounterVec // labels: outcome={success,error}
	FeedRecords prometheus.Gauge

	ResultsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all simulator metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SimulationsStarted,
		m.SimulationsRejected,
		m.SimulationsCompleted,
		m.SimulationRunning,
		m.NarrativeDuration,
		m.NarrativeCache,
		m.FeedFetches,
		m.FeedRecords,
		m.ResultsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SimulationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "impact_sim",
			Name:      "simulations_started_total",
			Help:      "Total simulation runs admitted by the run guard.",
		}),
		SimulationsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "impact_sim",
			Name:      "simulations_rejected_total",
			Help:      "Total simulation triggers dropped because a run was in progress.",
		}),
		SimulationsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact_sim",
			Name:      "simulations_completed_total",
			Help:      "Simulation runs that reached the narrative step, by outcome.",
		}, []string{"outcome"}),
		SimulationRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "impact_sim",
			Name:      "simulation_running",
			Help:      "1 while a simulation run is animating or loading, 0 when idle.",
		}),
		NarrativeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "impact_sim",
			Name:      "narrative_duration_seconds",
			Help:      "Duration of narrative generation calls in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		NarrativeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact_sim",
			Name:      "narrative_cache_total",
			Help:      "Narrative cache lookups by result.",
		}, []string{"result"}),
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact_sim",
			Name:      "feed_fetch_total",
			Help:      "Near-Earth-object feed fetches by outcome.",
		}, []string{"outcome"}),
		FeedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "impact_sim",
			Name:      "feed_records",
			Help:      "Number of near-Earth objects loaded from the live feed.",
		}),
		ResultsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact_sim",
			Name:      "results_published_total",
			Help:      "Completed runs written to the results sink, by outcome.",
		}, []string{"outcome"}),
	}
}
