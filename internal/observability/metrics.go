package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// nowcast pipeline and the ensemble engine.
type Metrics struct {
	DetectionsConsumed prometheus.Counter
	ParseErrors        prometheus.Counter
	NowcastsGenerated  prometheus.Counter
	NowcastsPublished  prometheus.Counter
	EngineErrors       prometheus.Counter
	PipelineRunning    prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Ensemble engine metrics.
	EnsembleDuration prometheus.Histogram
	EnsembleMembers  prometheus.Histogram
	SeedPlacement    *prometheus.CounterVec // labels: outcome={placed,out_of_grid,transform_error}
	EmptySeedRuns    prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DetectionsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_nowcast",
			Name:      "detections_consumed_total",
			Help:      "Total detection events read from the source topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_nowcast",
			Name:      "parse_errors_total",
			Help:      "Total detection events that failed to parse.",
		}),
		NowcastsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_nowcast",
			Name:      "nowcasts_generated_total",
			Help:      "Total nowcast products generated.",
		}),
		NowcastsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_nowcast",
			Name:      "nowcasts_published_total",
			Help:      "Total nowcast summaries written to the sink topic.",
		}),
		EngineErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_nowcast",
			Name:      "engine_errors_total",
			Help:      "Total ensemble runs that failed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_nowcast",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_nowcast",
			Name:      "batch_size",
			Help:      "Number of detection events per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_nowcast",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete extract-nowcast-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		EnsembleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_nowcast",
			Name:      "ensemble_duration_seconds",
			Help:      "Duration of a full ensemble run including reduction.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		EnsembleMembers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_nowcast",
			Name:      "ensemble_members",
			Help:      "Ensemble size per run.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100},
		}),
		SeedPlacement: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_nowcast",
			Name:      "seed_placement_total",
			Help:      "Detection seeding outcomes by result.",
		}, []string{"outcome"}),
		EmptySeedRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_nowcast",
			Name:      "empty_seed_runs_total",
			Help:      "Ensemble runs where no detection landed on the grid.",
		}),
	}

	prometheus.MustRegister(
		m.DetectionsConsumed,
		m.ParseErrors,
		m.NowcastsGenerated,
		m.NowcastsPublished,
		m.EngineErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.EnsembleDuration,
		m.EnsembleMembers,
		m.SeedPlacement,
		m.EmptySeedRuns,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DetectionsConsumed:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_nowcast", Name: "detections_consumed_total"}),
		ParseErrors:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_nowcast", Name: "parse_errors_total"}),
		NowcastsGenerated:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_nowcast", Name: "nowcasts_generated_total"}),
		NowcastsPublished:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_nowcast", Name: "nowcasts_published_total"}),
		EngineErrors:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_nowcast", Name: "engine_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fire_nowcast", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_nowcast", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_nowcast", Name: "batch_processing_duration_seconds"}),
		EnsembleDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_nowcast", Name: "ensemble_duration_seconds"}),
		EnsembleMembers:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_nowcast", Name: "ensemble_members"}),
		SeedPlacement:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fire_nowcast", Name: "seed_placement_total"}, []string{"outcome"}),
		EmptySeedRuns:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_nowcast", Name: "empty_seed_runs_total"}),
	}
}
