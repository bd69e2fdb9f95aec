// Package telemetry groups the observability packages of cartgate.
//
// # Components
//
//   - logging: structured logging on log/slog with request and cart context
//   - metrics: Prometheus collectors for admission, remediation and reloads
//   - tracing: OpenTelemetry spans exported over OTLP
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	cfg := config.GetConfig()
//	logger, _ := logging.New(logging.FromConfig(&cfg.Telemetry.Logging))
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.DefaultRegisterer)
//	provider, _ := tracing.New(ctx, &cfg.Telemetry.Tracing)
//	defer provider.Shutdown(ctx)
package telemetry
