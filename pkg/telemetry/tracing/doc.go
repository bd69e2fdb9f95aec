// Package tracing sets up OpenTelemetry tracing for cartgate.
//
// New installs a global tracer provider that exports spans over OTLP/gRPC and
// a W3C Trace Context propagator. Packages that emit spans obtain their tracer
// with otel.Tracer at package scope, so they work unchanged whether tracing is
// enabled, disabled or replaced by a test provider.
//
// # Spans
//
//	http.server              one per API request (HTTPMiddleware)
//	checkout.evaluate        admission of a client-supplied snapshot
//	checkout.check           admission of a stored cart
//	checkout.authorize       pre-payment admission
//	checkout.finalize        re-check and order placement
//	remediation.recommend    catalog lookup for suggestions
//
// # Configuration
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//	    endpoint: otel-collector:4317
//	    otlp:
//	      insecure: true
//
// Samplers are parent-based: a request arriving with a sampled traceparent
// header is always traced.
package tracing
