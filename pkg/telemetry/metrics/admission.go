package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"checkered/cartgate/pkg/config"
)

// AdmissionMetrics tracks admission evaluations.
type AdmissionMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	blocksTotal        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
}

// NewAdmissionMetrics creates and registers admission metrics.
func NewAdmissionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AdmissionMetrics {
	am := &AdmissionMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "admission_evaluations_total",
				Help:      "Total number of admission evaluations by outcome",
			},
			[]string{"outcome"},
		),

		blocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "admission_blocks_total",
				Help:      "Total number of block reasons reported by blocked evaluations",
			},
			[]string{"reason"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "admission_evaluation_duration_seconds",
				Help:      "Duration of admission evaluations including remediation lookups",
				Buckets:   cfg.DurationBuckets,
			},
		),
	}

	registry.MustRegister(am.evaluationsTotal, am.blocksTotal, am.evaluationDuration)

	return am
}

// RecordEvaluation records one evaluation.
func (am *AdmissionMetrics) RecordEvaluation(outcome string, reasons []string, duration time.Duration) {
	am.evaluationsTotal.WithLabelValues(outcome).Inc()
	for _, reason := range reasons {
		am.blocksTotal.WithLabelValues(reason).Inc()
	}
	am.evaluationDuration.Observe(duration.Seconds())
}
