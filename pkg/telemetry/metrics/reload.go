package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"checkered/cartgate/pkg/config"
)

// ReloadMetrics tracks rule set reloads.
type ReloadMetrics struct {
	reloadsTotal *prometheus.CounterVec
	generation   prometheus.Gauge
}

// NewReloadMetrics creates and registers reload metrics.
func NewReloadMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ReloadMetrics {
	rm := &ReloadMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_reloads_total",
				Help:      "Total number of admission rule reloads by result",
			},
			[]string{"result"},
		),

		generation: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_generation",
				Help:      "Generation of the active admission rule set",
			},
		),
	}

	registry.MustRegister(rm.reloadsTotal, rm.generation)

	return rm
}

// RecordReload records one reload attempt.
func (rm *ReloadMetrics) RecordReload(result string, generation uint64) {
	rm.reloadsTotal.WithLabelValues(result).Inc()
	rm.generation.Set(float64(generation))
}
