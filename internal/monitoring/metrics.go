// Package monitoring exposes Prometheus metrics and runs periodic
// maintenance checks against the store.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sells-group/geo-analytics/internal/analysis"
)

const namespace = "geo_analytics"

// Analysis outcomes.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalid         = "invalid"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeError           = "error"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec // labels: outcome
	AnalysisDuration  prometheus.Histogram
	HazardLevels      *prometheus.CounterVec // labels: hazard, level
	BatchSize         prometheus.Histogram
	AuthRequests      *prometheus.CounterVec // labels: operation, outcome
	RevocationsPurged prometheus.Counter
	StoreUp           prometheus.Gauge

	HTTPRequests        *prometheus.CounterVec   // labels: route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// NewUnregisteredMetrics creates Metrics that record but are never exported.
// Services use it when no metrics are supplied.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Location analyses by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time to derive and persist one analysis.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		HazardLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hazard_levels_total",
			Help:      "Derived hazard levels by hazard and level.",
		}, []string{"hazard", "level"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Coordinates per batch analysis request.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		AuthRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_requests_total",
			Help:      "Authentication operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		RevocationsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_purged_total",
			Help:      "Expired token revocations removed from the store.",
		}),
		StoreUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_up",
			Help:      "1 when the last store ping succeeded, 0 otherwise.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.HazardLevels,
		m.BatchSize,
		m.AuthRequests,
		m.RevocationsPurged,
		m.StoreUp,
		m.HTTPRequests,
		m.HTTPRequestDuration,
	}
}

// ObserveHazards counts each hazard level of a report.
func (m *Metrics) ObserveHazards(hazards []analysis.Hazard) {
	for _, h := range hazards {
		m.HazardLevels.WithLabelValues(h.Name, string(h.Level)).Inc()
	}
}

// ObserveAuth counts one authentication operation.
func (m *Metrics) ObserveAuth(operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.AuthRequests.WithLabelValues(operation, outcome).Inc()
}
