package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the extraction pipeline. A nil *Metrics
// records nothing.
//
// Metrics:
//   - rfp_pipeline_runs_total{method,outcome}
//   - rfp_pipeline_fallbacks_total{reason}
//   - rfp_pipeline_stage_duration_seconds{stage}
//   - rfp_pipeline_model_duration_seconds
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	FallbacksTotal *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	ModelDuration  prometheus.Histogram
}

// NewMetrics registers the pipeline metrics with reg; nil means the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfp_pipeline_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"method", "outcome"},
		),
		FallbacksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfp_pipeline_fallbacks_total",
				Help: "Total number of runs that used the deterministic extractor",
			},
			[]string{"reason"}, // failure kind, or "unavailable"
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rfp_pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"stage"},
		),
		ModelDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rfp_pipeline_model_duration_seconds",
				Help:    "Duration of model-assisted extraction calls in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 11),
			},
		),
	}
}

func (m *Metrics) run(method, outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) fallback(reason string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) stage(name string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

func (m *Metrics) model(start time.Time) {
	if m == nil {
		return
	}
	m.ModelDuration.Observe(time.Since(start).Seconds())
}
