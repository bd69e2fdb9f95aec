package remediation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/cart"
)

// Lookup results reported to Metrics.
const (
	ResultOK      = "ok"
	ResultEmpty   = "empty"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

// Defaults for Config.
const (
	DefaultBatchSize     = 20
	DefaultDisplayCap    = 4
	DefaultLookupTimeout = 2 * time.Second
)

var tracer = otel.Tracer("checkered/cartgate/pkg/remediation")

// Config bounds the catalog lookup.
type Config struct {
	// BatchSize is the number of candidates fetched before filtering. It must
	// be at least DisplayCap.
	BatchSize int

	// DisplayCap is the maximum number of suggestions returned.
	DisplayCap int

	// LookupTimeout bounds the catalog call. Zero disables the timeout.
	LookupTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     DefaultBatchSize,
		DisplayCap:    DefaultDisplayCap,
		LookupTimeout: DefaultLookupTimeout,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.DisplayCap <= 0 {
		return errors.New("display cap must be positive")
	}
	if c.BatchSize < c.DisplayCap {
		return fmt.Errorf("batch size (%d) must be at least the display cap (%d)", c.BatchSize, c.DisplayCap)
	}
	if c.LookupTimeout < 0 {
		return errors.New("lookup timeout must not be negative")
	}
	return nil
}

// Metrics records remediation lookups.
type Metrics interface {
	RecordRemediationLookup(result string, suggestions int, duration time.Duration)
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(r *Recommender) {
		r.metrics = m
	}
}

// Recommender builds remediation sets for blocked carts.
type Recommender struct {
	catalog Catalog
	config  Config
	logger  *slog.Logger
	metrics Metrics
}

// NewRecommender creates a recommender backed by catalog.
func NewRecommender(catalog Catalog, cfg Config, opts ...Option) (*Recommender, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remediation config: %w", err)
	}

	r := &Recommender{
		catalog: catalog,
		config:  cfg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Recommend returns suggestions that would close the composition shortfall.
// It returns an empty set without calling the catalog when nothing is
// missing. It never fails.
func (r *Recommender) Recommend(ctx context.Context, tax admission.Taxonomy, snap *cart.Snapshot, composition *admission.CompositionResult) *Set {
	set := emptySet()
	if snap == nil || composition == nil {
		return set
	}

	// Premium and Licensed shortfalls are both remedied by Fantasy items.
	missing := composition.MissingFantasyForPremium + composition.MissingFantasyForLicensed
	if missing <= 0 {
		return set
	}
	set.Category = admission.Fantasy
	set.Missing = missing

	ctx, span := tracer.Start(ctx, "remediation.recommend")
	defer span.End()
	span.SetAttributes(
		attribute.String("cart.id", snap.ID),
		attribute.Int("remediation.missing", missing),
	)

	start := time.Now()
	products, err := r.lookup(ctx, Query{
		CategoryID:   tax.Ref(admission.Fantasy).ID,
		RegionID:     snap.RegionID,
		CurrencyCode: snap.CurrencyCode,
		Limit:        r.config.BatchSize,
	})
	if err != nil {
		result := ResultError
		if errors.Is(err, context.DeadlineExceeded) {
			result = ResultTimeout
		}
		r.logger.WarnContext(ctx, "remediation lookup failed",
			"cart_id", snap.ID,
			"result", result,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.record(result, 0, time.Since(start))
		return set
	}

	set.Suggestions = r.filter(snap, products)

	result := ResultOK
	if len(set.Suggestions) == 0 {
		result = ResultEmpty
	}
	span.SetAttributes(
		attribute.Int("remediation.candidates", len(products)),
		attribute.Int("remediation.suggestions", len(set.Suggestions)),
	)
	r.logger.DebugContext(ctx, "remediation lookup completed",
		"cart_id", snap.ID,
		"candidates", len(products),
		"suggestions", len(set.Suggestions),
	)
	r.record(result, len(set.Suggestions), time.Since(start))

	return set
}

func (r *Recommender) lookup(ctx context.Context, q Query) ([]Product, error) {
	if r.config.LookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.LookupTimeout)
		defer cancel()
	}

	products, err := r.catalog.ListByCategory(ctx, q)
	if err != nil {
		return nil, err
	}
	// A catalog that ignores cancellation must not leak late results.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// filter drops products already in the cart, duplicates, and products without
// a purchasable variant, then truncates to the display cap, preserving catalog order.
func (r *Recommender) filter(snap *cart.Snapshot, products []Product) []Suggestion {
	inCart := snap.ProductIDs()
	out := make([]Suggestion, 0, r.config.DisplayCap)

	for _, p := range products {
		if len(out) == r.config.DisplayCap {
			break
		}
		if _, ok := inCart[p.ID]; ok {
			continue
		}
		if !p.Purchasable() {
			continue
		}
		out = append(out, Suggestion{Product: p, Satisfies: admission.Fantasy})
		inCart[p.ID] = struct{}{}
	}
	return out
}

func (r *Recommender) record(result string, suggestions int, d time.Duration) {
	if r.metrics != nil {
		r.metrics.RecordRemediationLookup(result, suggestions, d)
	}
}
