// Package metrics provides Prometheus metrics for skills analysis runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors for a skills analysis run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Input metrics
	rowsRead             prometheus.Counter
	rowsSkipped          prometheus.Counter
	respondentsProcessed prometheus.Counter
	mappingSubcategories prometheus.Gauge

	// Normalization quality
	warnings *prometheus.CounterVec
	claims   *prometheus.CounterVec

	// Output metrics
	reportsWritten *prometheus.CounterVec
	reportErrors   *prometheus.CounterVec
	pendingReports prometheus.Gauge
	activeWriters  prometheus.Gauge

	// Run metrics
	runDuration   prometheus.Histogram
	lastRunUnix   prometheus.Gauge
	lastRunFailed prometheus.Gauge
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
		namespace:        "skills",
		subsystem:        "analysis",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.rowsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_read_total",
		Help:        "Survey rows read from the input CSV (header excluded)",
		ConstLabels: labels,
	})

	m.rowsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_skipped_total",
		Help:        "Survey rows skipped because they could not be normalized",
		ConstLabels: labels,
	})

	m.respondentsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "respondents_normalized_total",
		Help:        "Respondents successfully normalized",
		ConstLabels: labels,
	})

	m.mappingSubcategories = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "mapping_subcategories",
		Help:        "Subcategories defined for the selected team",
		ConstLabels: labels,
	})

	m.warnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "warnings_total",
		Help:        "Recovered warnings by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.claims = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "claims_total",
		Help:        "Skill claims produced by normalization, by claim kind and match kind",
		ConstLabels: labels,
	}, []string{"kind", "match"})

	m.reportsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reports_written_total",
		Help:        "Report files written, by process and format",
		ConstLabels: labels,
	}, []string{"process", "format"})

	m.reportErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "report_errors_total",
		Help:        "Report files that could not be written, by process",
		ConstLabels: labels,
	}, []string{"process"})

	m.pendingReports = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pending_reports",
		Help:        "Reports queued and not yet picked up by a writer",
		ConstLabels: labels,
	})

	m.activeWriters = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "active_report_writers",
		Help:        "Report writers currently running",
		ConstLabels: labels,
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of a full pipeline run",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time the last run finished",
		ConstLabels: labels,
	})

	m.lastRunFailed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_failed",
		Help:        "1 when the last run returned an error, 0 otherwise",
		ConstLabels: labels,
	})
}

// RecordRowRead increments the rows read counter.
func RecordRowRead() {
	if !globalManager.enabled {
		return
	}
	globalManager.rowsRead.Inc()
}

// RecordRowSkipped increments the skipped rows counter.
func RecordRowSkipped() {
	if !globalManager.enabled {
		return
	}
	globalManager.rowsSkipped.Inc()
}

// RecordRespondent increments the normalized respondents counter.
func RecordRespondent() {
	if !globalManager.enabled {
		return
	}
	globalManager.respondentsProcessed.Inc()
}

// UpdateMappingSubcategories sets the number of subcategories of the active team.
func UpdateMappingSubcategories(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.mappingSubcategories.Set(float64(count))
}

// RecordWarning increments the warnings counter for kind.
func RecordWarning(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.warnings.WithLabelValues(kind).Inc()
}

// RecordClaim increments the claims counter.
func RecordClaim(kind, match string) {
	if !globalManager.enabled {
		return
	}
	globalManager.claims.WithLabelValues(kind, match).Inc()
}

// RecordReportWritten increments the written reports counter.
func RecordReportWritten(process, format string) {
	if !globalManager.enabled {
		return
	}
	globalManager.reportsWritten.WithLabelValues(process, format).Inc()
}

// RecordReportError increments the failed reports counter.
func RecordReportError(process string) {
	if !globalManager.enabled {
		return
	}
	globalManager.reportErrors.WithLabelValues(process).Inc()
}

// UpdatePendingReports sets the number of queued reports.
func UpdatePendingReports(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.pendingReports.Set(float64(n))
}

// UpdateActiveWriters sets the number of running report writers.
func UpdateActiveWriters(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.activeWriters.Set(float64(n))
}

// RecordRun observes the duration and outcome of a finished run.
func RecordRun(duration time.Duration, finished time.Time, failed bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.runDuration.Observe(duration.Seconds())
	globalManager.lastRunUnix.Set(float64(finished.Unix()))
	if failed {
		globalManager.lastRunFailed.Set(1)
	} else {
		globalManager.lastRunFailed.Set(0)
	}
}

// ResetRun swaps in a fresh registry so counters and an export cover a single
// run. The enabled state carries over.
func ResetRun() {
	enabled := globalManager.enabled
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(WithPrometheusRegistry(customRegistry), WithMetricsEnabled(enabled))
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// WriteTextfile writes every registered metric in the Prometheus text format
// to path, for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
