package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"checkered/cartgate/pkg/cart"
)

// Attribute keys shared by cartgate spans.
const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"

	AttrCartID       = "cart.id"
	AttrCartRegion   = "cart.region_id"
	AttrCartLines    = "cart.lines"
	AttrCartQuantity = "cart.total_quantity"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"

	AttrErrorType       = "error.type"
	AttrRulesGeneration = "rules.generation"
)

// SetCartAttributes describes the snapshot under evaluation.
func SetCartAttributes(span trace.Span, snap *cart.Snapshot) {
	if snap == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Int(AttrCartLines, len(snap.Lines)),
		attribute.Int(AttrCartQuantity, snap.TotalQuantity()),
	}
	if snap.ID != "" {
		attrs = append(attrs, attribute.String(AttrCartID, snap.ID))
	}
	if snap.RegionID != "" {
		attrs = append(attrs, attribute.String(AttrCartRegion, snap.RegionID))
	}
	span.SetAttributes(attrs...)
}

// SetErrorAttributes records err with a short classification.
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.String(AttrErrorType, errorType))
	SetStatus(span, err)
}
