package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/remediation"
)

var tracer = otel.Tracer("checkered/cartgate/pkg/checkout")

// Evaluation outcomes reported to the Recorder.
const (
	OutcomePassed  = "passed"
	OutcomeBlocked = "blocked"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

var (
	// ErrCheckoutBlocked matches every *BlockedError via errors.Is.
	ErrCheckoutBlocked = errors.New("checkout blocked")

	// ErrNoEngine is returned when the engine source has nothing loaded.
	ErrNoEngine = errors.New("no admission engine loaded")

	// ErrNoCartStore is returned by cart operations on a gate built without
	// a CartStore.
	ErrNoCartStore = errors.New("no cart store configured")
)

// BlockedError is returned when the authoritative re-check rejects a cart.
type BlockedError struct {
	CartID     string
	Evaluation *admission.Evaluation
}

// Error returns the error message including the shopper-facing reason.
func (e *BlockedError) Error() string {
	msg := e.Evaluation.Decision.MessageText()
	if msg == "" {
		return fmt.Sprintf("checkout blocked for cart %s", e.CartID)
	}
	return fmt.Sprintf("checkout blocked for cart %s: %s", e.CartID, msg)
}

// Is reports whether target is ErrCheckoutBlocked.
func (e *BlockedError) Is(target error) bool {
	return target == ErrCheckoutBlocked
}

// EngineSource supplies the engine to evaluate with. The rules manager
// implements it so that reloads take effect on the next evaluation.
type EngineSource interface {
	Engine() *admission.Engine
}

// StaticEngine is an EngineSource that always returns the same engine.
type StaticEngine struct {
	E *admission.Engine
}

// Engine returns the wrapped engine.
func (s StaticEngine) Engine() *admission.Engine {
	return s.E
}

// Recommender suggests products for a blocked cart.
type Recommender interface {
	Recommend(ctx context.Context, tax admission.Taxonomy, snap *cart.Snapshot, composition *admission.CompositionResult) *remediation.Set
}

// Recorder receives evaluation metrics.
type Recorder interface {
	RecordEvaluation(outcome string, reasons []string, duration time.Duration)
}

// Result is an advisory admission check.
type Result struct {
	CartID      string                `json:"cart_id,omitempty"`
	Evaluation  *admission.Evaluation `json:"evaluation"`
	Remediation *remediation.Set      `json:"remediation,omitempty"`
}

// Gate runs admission checks against carts. Check is advisory; Authorize and
// Finalize always evaluate a freshly loaded snapshot.
type Gate struct {
	engines     EngineSource
	carts       CartStore
	recommender Recommender
	recorder    Recorder
	logger      *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithRecommender enables remediation suggestions for blocked checks.
func WithRecommender(r Recommender) Option {
	return func(g *Gate) {
		g.recommender = r
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gate) {
		g.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate creates a gate. carts may be nil when only inline snapshots are
// evaluated.
func NewGate(engines EngineSource, carts CartStore, opts ...Option) (*Gate, error) {
	if engines == nil {
		return nil, errors.New("engine source cannot be nil")
	}

	g := &Gate{
		engines: engines,
		carts:   carts,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Evaluate checks an inline snapshot and attaches remediation when blocked.
func (g *Gate) Evaluate(ctx context.Context, snap *cart.Snapshot) (*Result, error) {
	ctx, span := tracer.Start(ctx, "checkout.evaluate")
	defer span.End()

	engine, eval, err := g.evaluate(ctx, span, snap)
	if err != nil {
		return nil, err
	}
	return g.result(ctx, engine, snap, eval), nil
}

// Check loads the cart and evaluates it. The result is advisory: the cart
// may change before the shopper confirms, so checkout must still go through
// Authorize or Finalize.
func (g *Gate) Check(ctx context.Context, cartID string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "checkout.check", trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer span.End()

	snap, err := g.load(ctx, span, cartID)
	if err != nil {
		return nil, err
	}

	engine, eval, err := g.evaluate(ctx, span, snap)
	if err != nil {
		return nil, err
	}
	return g.result(ctx, engine, snap, eval), nil
}

// Authorize re-loads the cart and re-evaluates it. It returns a *BlockedError
// when checkout must not proceed.
func (g *Gate) Authorize(ctx context.Context, cartID string) (*admission.Evaluation, error) {
	ctx, span := tracer.Start(ctx, "checkout.authorize", trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer span.End()

	_, eval, err := g.authorize(ctx, span, cartID)
	return eval, err
}

// Finalize re-checks the cart immediately before running fn, the order or
// payment side effect. fn is never called for a blocked cart.
func (g *Gate) Finalize(ctx context.Context, cartID string, fn func(ctx context.Context, snap *cart.Snapshot) error) error {
	if fn == nil {
		return errors.New("finalize function cannot be nil")
	}

	ctx, span := tracer.Start(ctx, "checkout.finalize", trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer span.End()

	snap, _, err := g.authorize(ctx, span, cartID)
	if err != nil {
		return err
	}

	if err := fn(ctx, snap); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalize failed")
		return fmt.Errorf("finalize cart %s: %w", cartID, err)
	}
	return nil
}

func (g *Gate) authorize(ctx context.Context, span trace.Span, cartID string) (*cart.Snapshot, *admission.Evaluation, error) {
	snap, err := g.load(ctx, span, cartID)
	if err != nil {
		return nil, nil, err
	}

	_, eval, err := g.evaluate(ctx, span, snap)
	if err != nil {
		return nil, nil, err
	}

	if !eval.Decision.Passed {
		g.logger.InfoContext(ctx, "checkout blocked",
			"cart_id", cartID,
			"reasons", eval.BlockReasons(),
		)
		return snap, eval, &BlockedError{CartID: cartID, Evaluation: eval}
	}
	return snap, eval, nil
}

func (g *Gate) load(ctx context.Context, span trace.Span, cartID string) (*cart.Snapshot, error) {
	if g.carts == nil {
		return nil, ErrNoCartStore
	}

	snap, err := g.carts.Snapshot(ctx, cartID)
	if err != nil {
		if !errors.Is(err, ErrCartNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load cart failed")
			g.recordOutcome(OutcomeError, nil, 0)
		}
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	return snap, nil
}

func (g *Gate) evaluate(ctx context.Context, span trace.Span, snap *cart.Snapshot) (*admission.Engine, *admission.Evaluation, error) {
	engine := g.engines.Engine()
	if engine == nil {
		return nil, nil, ErrNoEngine
	}

	start := time.Now()
	eval, err := engine.Evaluate(snap)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid snapshot")
		g.recordOutcome(OutcomeInvalid, nil, duration)
		return nil, nil, err
	}

	reasons := eval.BlockReasons()
	span.SetAttributes(
		attribute.Bool("admission.passed", eval.Decision.Passed),
		attribute.String("admission.reasons", strings.Join(reasons, ",")),
	)

	outcome := OutcomePassed
	if !eval.Decision.Passed {
		outcome = OutcomeBlocked
	}
	g.recordOutcome(outcome, reasons, duration)

	g.logger.DebugContext(ctx, "cart evaluated",
		"cart_id", snap.ID,
		"passed", eval.Decision.Passed,
		"total_items", eval.Composition.TotalCount,
		"duration", duration,
	)

	return engine, eval, nil
}

func (g *Gate) result(ctx context.Context, engine *admission.Engine, snap *cart.Snapshot, eval *admission.Evaluation) *Result {
	res := &Result{CartID: snap.ID, Evaluation: eval}
	if !eval.Decision.Passed && g.recommender != nil {
		res.Remediation = g.recommender.Recommend(ctx, engine.Rules().Taxonomy, snap, eval.Composition)
	}
	return res
}

func (g *Gate) recordOutcome(outcome string, reasons []string, duration time.Duration) {
	if g.recorder != nil {
		g.recorder.RecordEvaluation(outcome, reasons, duration)
	}
}
