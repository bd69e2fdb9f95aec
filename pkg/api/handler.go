package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/checkout"
	"checkered/cartgate/pkg/config"
	"checkered/cartgate/pkg/telemetry/logging"
	"checkered/cartgate/pkg/telemetry/tracing"
)

// Route patterns served by Handler.
const (
	RouteEvaluate  = "POST /v1/admission/evaluate"
	RouteAdmission = "GET /v1/carts/{id}/admission"
	RouteAuthorize = "POST /v1/carts/{id}/checkout/authorize"
)

// Generations reports the active rule set generation.
type Generations interface {
	Generation() uint64
}

// Handler serves the admission endpoints.
type Handler struct {
	gate         *checkout.Gate
	generations  Generations
	maxBodyBytes int64
	logger       *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithGenerations reports the rules generation in responses.
func WithGenerations(g Generations) Option {
	return func(h *Handler) {
		h.generations = g
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a Handler around gate.
func NewHandler(gate *checkout.Gate, opts ...Option) (*Handler, error) {
	if gate == nil {
		return nil, errors.New("gate cannot be nil")
	}

	h := &Handler{
		gate:         gate,
		maxBodyBytes: config.DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register mounts the endpoints on mux. wrap, if not nil, decorates each
// handler with per-route middleware and receives the route pattern.
func (h *Handler) Register(mux *http.ServeMux, wrap func(route string, next http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		RouteEvaluate:  h.Evaluate,
		RouteAdmission: h.Admission,
		RouteAuthorize: h.Authorize,
	}
	for route, fn := range routes {
		var handler http.Handler = fn
		if wrap != nil {
			handler = wrap(route, handler)
		}
		mux.Handle(route, handler)
	}
}

// Evaluate handles POST /v1/admission/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var snap cart.Snapshot
	if err := h.decode(w, r, &snap); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if snap.ID != "" {
		ctx = logging.WithCartID(ctx, snap.ID)
	}
	if snap.RegionID != "" {
		ctx = logging.WithRegionID(ctx, snap.RegionID)
	}
	tracing.SetCartAttributes(trace.SpanFromContext(ctx), &snap)

	result, err := h.gate.Evaluate(ctx, &snap)
	if err != nil {
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	writeJSON(w, http.StatusOK, h.admissionResponse(ctx, result))
}

// Admission handles GET /v1/carts/{id}/admission.
func (h *Handler) Admission(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	ctx := logging.WithCartID(r.Context(), cartID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(tracing.AttrCartID, cartID))

	result, err := h.gate.Check(ctx, cartID)
	if err != nil {
		h.writeError(w, r.WithContext(ctx), err)
		return
	}

	writeJSON(w, http.StatusOK, h.admissionResponse(ctx, result))
}

// Authorize handles POST /v1/carts/{id}/checkout/authorize.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")
	ctx := logging.WithCartID(r.Context(), cartID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(tracing.AttrCartID, cartID))

	eval, err := h.gate.Authorize(ctx, cartID)

	var blocked *checkout.BlockedError
	switch {
	case errors.As(err, &blocked):
		writeJSON(w, http.StatusConflict, AuthorizeResponse{
			CartID:          cartID,
			Evaluation:      blocked.Evaluation,
			RulesGeneration: h.generation(ctx),
			Error: &ErrorDetail{
				Message: blocked.Evaluation.Decision.MessageText(),
				Type:    ErrorTypeCheckoutBlocked,
				Code:    CodeCartBlocked,
			},
		})
	case err != nil:
		h.writeError(w, r.WithContext(ctx), err)
	default:
		writeJSON(w, http.StatusOK, AuthorizeResponse{
			CartID:          cartID,
			Authorized:      true,
			Evaluation:      eval,
			RulesGeneration: h.generation(ctx),
		})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &decodeError{err: errors.New("body is empty")}
		}
		return &decodeError{err: err}
	}
	if dec.More() {
		return &decodeError{err: fmt.Errorf("unexpected data after JSON object")}
	}
	return nil
}

func (h *Handler) admissionResponse(ctx context.Context, result *checkout.Result) AdmissionResponse {
	return AdmissionResponse{Result: result, RulesGeneration: h.generation(ctx)}
}

func (h *Handler) generation(ctx context.Context) uint64 {
	if h.generations == nil {
		return 0
	}
	gen := h.generations.Generation()
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64(tracing.AttrRulesGeneration, int64(gen)))
	return gen
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := HandleError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	tracing.SetErrorAttributes(trace.SpanFromContext(r.Context()), err, resp.Error.Code)
	h.logger.Log(r.Context(), level, "request failed",
		"status", status,
		"code", resp.Error.Code,
		"error", err,
	)

	writeJSON(w, status, resp)
}
