// Package metrics provides Prometheus metrics for cartgate.
//
// # Metric families
//
// With the default namespace "cartgate":
//
//	cartgate_admission_evaluations_total{outcome}
//	cartgate_admission_blocks_total{reason}
//	cartgate_admission_evaluation_duration_seconds
//	cartgate_remediation_lookups_total{result}
//	cartgate_remediation_suggestions
//	cartgate_remediation_lookup_duration_seconds
//	cartgate_rules_reloads_total{result}
//	cartgate_rules_generation
//	cartgate_http_requests_total{route,method,status}
//	cartgate_http_request_duration_seconds{route,method}
//	cartgate_http_requests_in_flight
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	gate, _ := checkout.NewGate(manager, store, checkout.WithRecorder(collector))
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A Collector built from a configuration with Enabled set to false accepts
// every call and records nothing.
package metrics
