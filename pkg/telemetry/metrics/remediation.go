package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"checkered/cartgate/pkg/config"
)

// RemediationMetrics tracks catalog lookups for suggestions.
type RemediationMetrics struct {
	lookupsTotal   *prometheus.CounterVec
	suggestions    prometheus.Histogram
	lookupDuration prometheus.Histogram
}

// NewRemediationMetrics creates and registers remediation metrics.
func NewRemediationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RemediationMetrics {
	rm := &RemediationMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "remediation_lookups_total",
				Help:      "Total number of remediation catalog lookups by result",
			},
			[]string{"result"},
		),

		suggestions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "remediation_suggestions",
				Help:      "Number of products suggested per lookup",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 25},
			},
		),

		lookupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "remediation_lookup_duration_seconds",
				Help:      "Duration of remediation catalog lookups",
				Buckets:   cfg.DurationBuckets,
			},
		),
	}

	registry.MustRegister(rm.lookupsTotal, rm.suggestions, rm.lookupDuration)

	return rm
}

// RecordLookup records one lookup.
func (rm *RemediationMetrics) RecordLookup(result string, suggestions int, duration time.Duration) {
	rm.lookupsTotal.WithLabelValues(result).Inc()
	rm.suggestions.Observe(float64(suggestions))
	rm.lookupDuration.Observe(duration.Seconds())
}
