package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// CartIDKey is the context key for cart identifiers.
	CartIDKey contextKey = "cart_id"

	// RegionIDKey is the context key for the shopper's region.
	RegionIDKey contextKey = "region_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithCartID adds a cart identifier to the context.
func WithCartID(ctx context.Context, cartID string) context.Context {
	return context.WithValue(ctx, CartIDKey, cartID)
}

// GetCartID retrieves the cart identifier from the context.
func GetCartID(ctx context.Context) string {
	if cartID, ok := ctx.Value(CartIDKey).(string); ok {
		return cartID
	}
	return ""
}

// WithRegionID adds a region identifier to the context.
func WithRegionID(ctx context.Context, regionID string) context.Context {
	return context.WithValue(ctx, RegionIDKey, regionID)
}

// GetRegionID retrieves the region identifier from the context.
func GetRegionID(ctx context.Context) string {
	if regionID, ok := ctx.Value(RegionIDKey).(string); ok {
		return regionID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Trace and span IDs come from the active OpenTelemetry span, if any.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}
	if cartID := GetCartID(ctx); cartID != "" {
		fields = append(fields, "cart_id", cartID)
	}
	if regionID := GetRegionID(ctx); regionID != "" {
		fields = append(fields, "region_id", regionID)
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			"trace_id", sc.TraceID().String(),
			"span_id", sc.SpanID().String(),
		)
	}

	return fields
}

// ContextHandler is a slog.Handler that appends the context fields to each
// record before passing it on.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler wraps inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if fields := extractContextFields(ctx); len(fields) > 0 {
			r = r.Clone()
			r.Add(fields...)
		}
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
