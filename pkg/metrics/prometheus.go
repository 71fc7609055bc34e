package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default stage duration buckets in milliseconds. Stages range from
// sub-millisecond ranking to multi-second TSV loads.
var defaultStageBuckets = []float64{1, 5, 25, 100, 500, 2_000, 10_000, 60_000, 300_000} //nolint:gochecknoglobals // read-only defaults

// Manager manages all Prometheus metrics for a pipeline run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Run metrics
	runsTotal    prometheus.Counter
	runFailures  *prometheus.CounterVec
	lastRunUnix  prometheus.Gauge
	stageLatency *prometheus.HistogramVec

	// Data volume metrics
	rowsLoaded   *prometheus.CounterVec
	rowsRetained *prometheus.GaugeVec

	// Data quality metrics
	lookupMisses      *prometheus.CounterVec
	joinDuplicates    *prometheus.CounterVec
	encodingFallbacks *prometheus.CounterVec

	// Output metrics
	leaderboardEntries *prometheus.GaugeVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cinerank",
		subsystem:        "pipeline",
		histogramBuckets: defaultStageBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Total number of pipeline runs started",
		ConstLabels: labels,
	})

	m.runFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_failures_total",
		Help:        "Pipeline runs aborted, by failing stage",
		ConstLabels: labels,
	}, []string{"stage"})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_unixtime",
		Help:        "Unix time of the last successfully completed run",
		ConstLabels: labels,
	})

	m.stageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Duration of each pipeline stage in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.rowsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_loaded_total",
		Help:        "Rows read from each input table",
		ConstLabels: labels,
	}, []string{"table"})

	m.rowsRetained = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_retained",
		Help:        "Rows surviving each pipeline stage in the last run",
		ConstLabels: labels,
	}, []string{"stage"})

	m.lookupMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "lookup_misses_total",
		Help:        "Reference lookups that fell back to a sentinel value",
		ConstLabels: labels,
	}, []string{"lookup"})

	m.joinDuplicates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "join_duplicates_total",
		Help:        "Rows dropped because their join key was already present",
		ConstLabels: labels,
	}, []string{"join"})

	m.encodingFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "encoding_fallbacks_total",
		Help:        "Inputs decoded with a fallback character encoding",
		ConstLabels: labels,
	}, []string{"encoding"})

	m.leaderboardEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_entries",
		Help:        "Entries in each computed leaderboard",
		ConstLabels: labels,
	}, []string{"board"})
}

// RecordRunStarted counts a started run.
func (m *Manager) RecordRunStarted() {
	if m.enabled {
		m.runsTotal.Inc()
	}
}

// RecordRunFailure counts a run aborted in stage.
func (m *Manager) RecordRunFailure(stage string) {
	if m.enabled {
		m.runFailures.WithLabelValues(stage).Inc()
	}
}

// MarkRunSucceeded stores the completion time of a successful run.
func (m *Manager) MarkRunSucceeded() {
	if m.enabled {
		m.lastRunUnix.SetToCurrentTime()
	}
}

// RecordStageDuration observes how long stage took.
func (m *Manager) RecordStageDuration(stage string, latencyMs float64) {
	if m.enabled {
		m.stageLatency.WithLabelValues(stage).Observe(latencyMs)
	}
}

// RecordRowsLoaded counts rows read from table.
func (m *Manager) RecordRowsLoaded(table string, n int) {
	if m.enabled {
		m.rowsLoaded.WithLabelValues(table).Add(float64(n))
	}
}

// UpdateRowsRetained sets the row count left after stage.
func (m *Manager) UpdateRowsRetained(stage string, n int) {
	if m.enabled {
		m.rowsRetained.WithLabelValues(stage).Set(float64(n))
	}
}

// RecordLookupMisses counts n reference lookups that fell back to a sentinel.
func (m *Manager) RecordLookupMisses(lookup string, n int) {
	if m.enabled && n > 0 {
		m.lookupMisses.WithLabelValues(lookup).Add(float64(n))
	}
}

// RecordJoinDuplicates counts n rows dropped from join because of a repeated key.
func (m *Manager) RecordJoinDuplicates(join string, n int) {
	if m.enabled && n > 0 {
		m.joinDuplicates.WithLabelValues(join).Add(float64(n))
	}
}

// RecordEncodingFallback counts an input decoded with encoding.
func (m *Manager) RecordEncodingFallback(encoding string) {
	if m.enabled {
		m.encodingFallbacks.WithLabelValues(encoding).Inc()
	}
}

// UpdateLeaderboardEntries sets the size of board.
func (m *Manager) UpdateLeaderboardEntries(board string, n int) {
	if m.enabled {
		m.leaderboardEntries.WithLabelValues(board).Set(float64(n))
	}
}

// Registry returns the registry the manager writes to.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric of the manager's registry to path in the
// text exposition format, for the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return nil
}

// Default returns the process-wide manager backed by GetRegistry.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
