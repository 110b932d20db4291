package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"AuthentiGo/pkg/models"
)

// Metrics holds the Prometheus collectors exported on /metrics
type Metrics struct {
	registry    *prometheus.Registry
	analyses    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	probability prometheus.Histogram
	duration    prometheus.Histogram
}

// NewMetrics registers the collectors on a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authentigo",
			Name:      "analyses_total",
			Help:      "Images scored, by risk level.",
		}, []string{"risk"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authentigo",
			Name:      "analysis_failures_total",
			Help:      "Images that could not be scored, by reason.",
		}, []string{"reason"}),
		probability: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "authentigo",
			Name:      "probability",
			Help:      "Distribution of manipulation probabilities.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "authentigo",
			Name:      "analysis_duration_seconds",
			Help:      "Time spent scoring one image.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		m.analyses,
		m.failures,
		m.probability,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Expose every risk label from the start
	for _, level := range models.RiskLevels {
		m.analyses.WithLabelValues(level.String())
	}

	return m
}

// ObserveResult records a scored image
func (m *Metrics) ObserveResult(result *models.AnalysisResult, elapsed time.Duration) {
	m.analyses.WithLabelValues(result.Risk.String()).Inc()
	m.probability.Observe(result.Probability)
	m.duration.Observe(elapsed.Seconds())
}

// ObserveFailure records an image that could not be scored
func (m *Metrics) ObserveFailure(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
