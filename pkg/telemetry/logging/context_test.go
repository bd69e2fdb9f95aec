package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()

	ctx = WithRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}

	ctx = WithCartID(ctx, "cart-1")
	if got := GetCartID(ctx); got != "cart-1" {
		t.Errorf("GetCartID() = %q, want %q", got, "cart-1")
	}

	ctx = WithRegionID(ctx, "us-east")
	if got := GetRegionID(ctx); got != "us-east" {
		t.Errorf("GetRegionID() = %q, want %q", got, "us-east")
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		get  func(context.Context) string
	}{
		{"RequestID", GetRequestID},
		{"CartID", GetCartID},
		{"RegionID", GetRegionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(ctx); got != "" {
				t.Errorf("Get%s() = %q, want empty", tt.name, got)
			}
		})
	}
}

func TestExtractContextFields(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	tests := []struct {
		name string
		ctx  context.Context
		want []any
	}{
		{
			name: "empty",
			ctx:  context.Background(),
			want: nil,
		},
		{
			name: "request and cart",
			ctx:  WithCartID(WithRequestID(context.Background(), "r"), "c"),
			want: []any{"request_id", "r", "cart_id", "c"},
		},
		{
			name: "span context",
			ctx:  trace.ContextWithSpanContext(context.Background(), sc),
			want: []any{
				"trace_id", "4bf92f3577b34da6a3ce929d0e0e4736",
				"span_id", "00f067aa0ba902b7",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractContextFields(tt.ctx)
			if len(got) != len(tt.want) {
				t.Fatalf("extractContextFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("extractContextFields()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestContextHandler_GroupAndAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(buf, nil)))

	ctx := WithCartID(context.Background(), "cart-3")
	logger.With("component", "gate").WithGroup("eval").InfoContext(ctx, "done", "passed", true)

	out := buf.String()
	if !strings.Contains(out, `"component":"gate"`) {
		t.Errorf("output missing component: %s", out)
	}
	if !strings.Contains(out, `"eval":{"passed":true,"cart_id":"cart-3"}`) {
		t.Errorf("output missing grouped fields: %s", out)
	}
}

func TestContextHandler_Enabled(t *testing.T) {
	h := NewContextHandler(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true, want false")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false, want true")
	}
}
