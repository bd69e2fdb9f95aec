package server

import (
	"log/slog"
	"net/http"
	"strings"

	"checkered/cartgate/pkg/api"
	"checkered/cartgate/pkg/api/middleware"
	"checkered/cartgate/pkg/config"
	"checkered/cartgate/pkg/telemetry/health"
	"checkered/cartgate/pkg/telemetry/metrics"
	"checkered/cartgate/pkg/telemetry/tracing"
)

// Routes collects the components mounted by NewRouter. Nil components are
// skipped.
type Routes struct {
	API       *api.Handler
	Checker   *health.Checker
	Health    *config.HealthConfig
	BuildInfo health.BuildInfo
	Metrics   *metrics.Collector

	// MetricsPath is where the Prometheus handler is mounted.
	MetricsPath string

	Logger *slog.Logger
}

// NewRouter builds the complete handler: API routes with per-route tracing
// and metrics, the health probes, the metrics endpoint and the shared
// middleware chain.
func NewRouter(rt Routes) http.Handler {
	logger := rt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	if rt.API != nil {
		rt.API.Register(mux, rt.instrument)
	}
	if rt.Checker != nil && rt.Health != nil {
		health.Register(mux, rt.Health, rt.Checker, rt.BuildInfo)
	}
	if rt.Metrics != nil {
		path := rt.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.Handle("GET "+path, rt.Metrics.Handler())
	}

	return middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logging(logger),
	)
}

// instrument wraps an API route with tracing and, when enabled, metrics. The
// method prefix of the pattern is dropped from the route label.
func (rt Routes) instrument(pattern string, next http.Handler) http.Handler {
	route := pattern
	if _, path, ok := strings.Cut(pattern, " "); ok {
		route = path
	}

	h := next
	if rt.Metrics != nil {
		h = rt.Metrics.Middleware(route, h)
	}
	return tracing.HTTPMiddleware(route, h)
}
