// Package metrics provides Prometheus metrics for league simulations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons for RecordRoundSkipped.
const (
	SkipSelfMatch  = "self_match"
	SkipNoOpponent = "no_opponent"
)

// Cold-start outcomes for RecordColdStart.
const (
	ColdStartPeers    = "peers"
	ColdStartFallback = "fallback"
)

// Manager owns every collector of the simulator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Season engine
	matchesPlayed       *prometheus.CounterVec
	roundsSkipped       *prometheus.CounterVec
	contestantsInjected prometheus.Counter
	coldStartEstimates  *prometheus.CounterVec
	ratingDelta         prometheus.Histogram

	// Season jobs
	seasonsCompleted prometheus.Counter
	seasonsFailed    prometheus.Counter
	seasonDuration   prometheus.Histogram
	queueSize        prometheus.Gauge
	workerCount      prometheus.Gauge

	// Accuracy audit
	auditAbsError prometheus.Histogram

	// Standings API
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rally",
		subsystem:        "league",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.matchesPlayed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("matches_played_total"),
		Help:        "Total number of rated matches by scoring granularity",
		ConstLabels: labels,
	}, []string{"granularity"})

	m.roundsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rounds_skipped_total"),
		Help:        "Total number of rounds discarded before play, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.contestantsInjected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("contestants_injected_total"),
		Help:        "Total number of contestants that joined mid-season",
		ConstLabels: labels,
	})

	m.coldStartEstimates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("coldstart_estimates_total"),
		Help:        "Total number of cold-start rating estimates by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.ratingDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rating_delta"),
		Help:        "Absolute rating change applied to one contestant after a match",
		Buckets:     []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128},
		ConstLabels: labels,
	})

	m.seasonsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("seasons_completed_total"),
		Help:        "Total number of seasons simulated to completion",
		ConstLabels: labels,
	})

	m.seasonsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("seasons_failed_total"),
		Help:        "Total number of seasons that ended with an error",
		ConstLabels: labels,
	})

	m.seasonDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("season_duration_milliseconds"),
		Help:        "Wall time of one simulated season in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Current number of season jobs waiting for a worker",
		ConstLabels: labels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_count"),
		Help:        "Current number of season workers",
		ConstLabels: labels,
	})

	m.auditAbsError = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("audit_abs_error"),
		Help:        "Absolute difference between expected and observed win share per audited pair",
		Buckets:     []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.5},
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        m.name("requests_total"),
		Help:        "Total number of standings API requests",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        m.name("request_duration_milliseconds"),
		Help:        "Standings API request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method"})
}

// RecordMatch counts one rated match and both rating changes.
func (m *Manager) RecordMatch(granularity string, deltaA, deltaB float64) {
	if !m.enabled {
		return
	}
	m.matchesPlayed.WithLabelValues(granularity).Inc()
	m.ratingDelta.Observe(abs(deltaA))
	m.ratingDelta.Observe(abs(deltaB))
}

// RecordRoundSkipped counts a discarded round.
func (m *Manager) RecordRoundSkipped(reason string) {
	if m.enabled {
		m.roundsSkipped.WithLabelValues(reason).Inc()
	}
}

// RecordContestantInjected counts a mid-season newcomer.
func (m *Manager) RecordContestantInjected() {
	if m.enabled {
		m.contestantsInjected.Inc()
	}
}

// RecordColdStart counts one cold-start estimate.
func (m *Manager) RecordColdStart(outcome string) {
	if m.enabled {
		m.coldStartEstimates.WithLabelValues(outcome).Inc()
	}
}

// RecordSeasonCompleted counts a finished season and its duration.
func (m *Manager) RecordSeasonCompleted(d time.Duration) {
	if !m.enabled {
		return
	}
	m.seasonsCompleted.Inc()
	m.seasonDuration.Observe(float64(d.Milliseconds()))
}

// RecordSeasonFailed counts a failed season.
func (m *Manager) RecordSeasonFailed() {
	if m.enabled {
		m.seasonsFailed.Inc()
	}
}

// UpdateQueueSize sets the pending season job count.
func (m *Manager) UpdateQueueSize(size int) {
	if m.enabled {
		m.queueSize.Set(float64(size))
	}
}

// UpdateWorkerCount sets the worker count.
func (m *Manager) UpdateWorkerCount(count int) {
	if m.enabled {
		m.workerCount.Set(float64(count))
	}
}

// RecordAuditError observes one audited pair's absolute error.
func (m *Manager) RecordAuditError(absErr float64) {
	if m.enabled {
		m.auditAbsError.Observe(absErr)
	}
}

// RecordHTTPRequest counts one API request and its latency.
func (m *Manager) RecordHTTPRequest(endpoint, method, status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	m.httpDuration.WithLabelValues(endpoint, method).Observe(float64(d.Milliseconds()))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// RecordMatch records on the global manager.
func RecordMatch(granularity string, deltaA, deltaB float64) {
	globalManager.RecordMatch(granularity, deltaA, deltaB)
}

// RecordRoundSkipped records on the global manager.
func RecordRoundSkipped(reason string) { globalManager.RecordRoundSkipped(reason) }

// RecordContestantInjected records on the global manager.
func RecordContestantInjected() { globalManager.RecordContestantInjected() }

// RecordColdStart records on the global manager.
func RecordColdStart(outcome string) { globalManager.RecordColdStart(outcome) }

// RecordSeasonCompleted records on the global manager.
func RecordSeasonCompleted(d time.Duration) { globalManager.RecordSeasonCompleted(d) }

// RecordSeasonFailed records on the global manager.
func RecordSeasonFailed() { globalManager.RecordSeasonFailed() }

// UpdateQueueSize records on the global manager.
func UpdateQueueSize(size int) { globalManager.UpdateQueueSize(size) }

// UpdateWorkerCount records on the global manager.
func UpdateWorkerCount(count int) { globalManager.UpdateWorkerCount(count) }

// RecordAuditError records on the global manager.
func RecordAuditError(absErr float64) { globalManager.RecordAuditError(absErr) }

// RecordHTTPRequest records on the global manager.
func RecordHTTPRequest(endpoint, method, status string, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, status, d)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the global registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
