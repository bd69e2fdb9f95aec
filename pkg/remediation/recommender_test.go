package remediation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/cart"
)

// fakeCatalog records queries and returns canned products.
type fakeCatalog struct {
	mu       sync.Mutex
	products []Product
	err      error
	block    bool
	queries  []Query
}

func (f *fakeCatalog) ListByCategory(ctx context.Context, q Query) ([]Product, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type lookupRecord struct {
	result      string
	suggestions int
}

type fakeMetrics struct {
	records []lookupRecord
}

func (m *fakeMetrics) RecordRemediationLookup(result string, suggestions int, _ time.Duration) {
	m.records = append(m.records, lookupRecord{result: result, suggestions: suggestions})
}

func product(id string, variant cart.Variant) Product {
	return Product{
		ID:          id,
		Title:       "Product " + id,
		CategoryIDs: []string{"fantasy"},
		Variants:    []Variant{{ID: "var_" + id, Inventory: variant}},
	}
}

func stocked(n int) cart.Variant {
	return cart.Variant{ManageInventory: true, InventoryQuantity: cart.Int(n)}
}

func blockedCart() *cart.Snapshot {
	return &cart.Snapshot{
		ID:           "cart_1",
		RegionID:     "reg_eu",
		CurrencyCode: "eur",
		Lines: []cart.Line{
			{ID: "li_1", ProductID: "p_in_cart", Quantity: 1, CategoryIDs: []string{"premium"}},
		},
	}
}

func shortfall(premium, licensed int) *admission.CompositionResult {
	return &admission.CompositionResult{
		MissingFantasyForPremium:  premium,
		MissingFantasyForLicensed: licensed,
	}
}

func newTestRecommender(t *testing.T, catalog Catalog, cfg Config, opts ...Option) *Recommender {
	t.Helper()
	rec, err := NewRecommender(catalog, cfg, opts...)
	if err != nil {
		t.Fatalf("NewRecommender() error = %v", err)
	}
	return rec
}

func suggestionIDs(set *Set) []string {
	ids := make([]string, len(set.Suggestions))
	for i, s := range set.Suggestions {
		ids[i] = s.Product.ID
	}
	return ids
}

func TestRecommend_NoShortfallSkipsCatalog(t *testing.T) {
	catalog := &fakeCatalog{products: []Product{product("p1", stocked(1))}}
	metrics := &fakeMetrics{}
	rec := newTestRecommender(t, catalog, DefaultConfig(), WithMetrics(metrics))

	set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), blockedCart(), shortfall(0, 0))

	if !set.Empty() {
		t.Errorf("Recommend() = %v, want empty set", suggestionIDs(set))
	}
	if set.Suggestions == nil {
		t.Error("Suggestions = nil, want empty slice")
	}
	if catalog.calls() != 0 {
		t.Errorf("catalog called %d times, want 0", catalog.calls())
	}
	if len(metrics.records) != 0 {
		t.Errorf("metrics recorded %v, want nothing", metrics.records)
	}
}

func TestRecommend_Filtering(t *testing.T) {
	catalog := &fakeCatalog{
		products: []Product{
			product("p_in_cart", stocked(5)),
			product("p_sold_out", stocked(0)),
			product("p1", stocked(2)),
			product("p_backorder", cart.Variant{ManageInventory: true, AllowBackorder: true}),
			product("p1", stocked(2)),
			product("p_untracked", cart.Variant{}),
			{ID: "p_no_variants", Title: "Empty"},
			product("p2", stocked(1)),
			product("p3", stocked(1)),
		},
	}
	metrics := &fakeMetrics{}
	rec := newTestRecommender(t, catalog, DefaultConfig(), WithMetrics(metrics))

	set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), blockedCart(), shortfall(1, 2))

	want := []string{"p1", "p_backorder", "p_untracked", "p2"}
	if got := suggestionIDs(set); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("suggestions = %v, want %v", got, want)
	}
	if set.Category != admission.Fantasy {
		t.Errorf("Category = %v, want %v", set.Category, admission.Fantasy)
	}
	if set.Missing != 3 {
		t.Errorf("Missing = %d, want 3", set.Missing)
	}
	for _, s := range set.Suggestions {
		if s.Satisfies != admission.Fantasy {
			t.Errorf("suggestion %s satisfies %v, want fantasy", s.Product.ID, s.Satisfies)
		}
	}

	if len(catalog.queries) != 1 {
		t.Fatalf("catalog called %d times, want 1", len(catalog.queries))
	}
	wantQuery := Query{CategoryID: "fantasy", RegionID: "reg_eu", CurrencyCode: "eur", Limit: DefaultBatchSize}
	if catalog.queries[0] != wantQuery {
		t.Errorf("query = %+v, want %+v", catalog.queries[0], wantQuery)
	}

	if len(metrics.records) != 1 || metrics.records[0] != (lookupRecord{result: ResultOK, suggestions: 4}) {
		t.Errorf("metrics = %+v, want one ok lookup with 4 suggestions", metrics.records)
	}
}

func TestRecommend_UsesConfiguredFantasyID(t *testing.T) {
	catalog := &fakeCatalog{}
	rec := newTestRecommender(t, catalog, DefaultConfig())

	tax := admission.Taxonomy{
		Licensed: admission.CategoryRef{ID: "pcat_lic"},
		Fantasy:  admission.CategoryRef{ID: "pcat_fan"},
		Premium:  admission.CategoryRef{ID: "pcat_pre"},
	}
	rec.Recommend(context.Background(), tax, blockedCart(), shortfall(0, 1))

	if len(catalog.queries) != 1 || catalog.queries[0].CategoryID != "pcat_fan" {
		t.Errorf("queries = %+v, want category pcat_fan", catalog.queries)
	}
}

func TestRecommend_DisplayCap(t *testing.T) {
	var products []Product
	for i := 0; i < 10; i++ {
		products = append(products, product(fmt.Sprintf("p%d", i), stocked(1)))
	}

	cfg := DefaultConfig()
	cfg.DisplayCap = 2
	cfg.BatchSize = 5

	rec := newTestRecommender(t, &fakeCatalog{products: products}, cfg)
	set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), blockedCart(), shortfall(2, 0))

	if got := suggestionIDs(set); strings.Join(got, ",") != "p0,p1" {
		t.Errorf("suggestions = %v, want [p0 p1]", got)
	}
}

func TestRecommend_LookupFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	metrics := &fakeMetrics{}

	catalog := &fakeCatalog{err: errors.New("connection refused")}
	rec := newTestRecommender(t, catalog, DefaultConfig(), WithLogger(logger), WithMetrics(metrics))

	set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), blockedCart(), shortfall(1, 0))

	if !set.Empty() {
		t.Errorf("Recommend() = %v, want empty set", suggestionIDs(set))
	}
	if set.Missing != 1 {
		t.Errorf("Missing = %d, want 1", set.Missing)
	}
	if !strings.Contains(buf.String(), "remediation lookup failed") {
		t.Errorf("log output = %q, want lookup failure", buf.String())
	}
	if len(metrics.records) != 1 || metrics.records[0].result != ResultError {
		t.Errorf("metrics = %+v, want one error lookup", metrics.records)
	}
}

func TestRecommend_LookupTimeout(t *testing.T) {
	metrics := &fakeMetrics{}
	cfg := DefaultConfig()
	cfg.LookupTimeout = 20 * time.Millisecond

	rec := newTestRecommender(t, &fakeCatalog{block: true}, cfg, WithMetrics(metrics))

	start := time.Now()
	set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), blockedCart(), shortfall(1, 0))

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Recommend() took %v, want bounded by lookup timeout", elapsed)
	}
	if !set.Empty() {
		t.Errorf("Recommend() = %v, want empty set", suggestionIDs(set))
	}
	if len(metrics.records) != 1 || metrics.records[0].result != ResultTimeout {
		t.Errorf("metrics = %+v, want one timeout lookup", metrics.records)
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	metrics := &fakeMetrics{}
	rec := newTestRecommender(t, &fakeCatalog{}, DefaultConfig(), WithMetrics(metrics))

	set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), blockedCart(), shortfall(0, 1))

	if !set.Empty() {
		t.Errorf("Recommend() = %v, want empty set", suggestionIDs(set))
	}
	if len(metrics.records) != 1 || metrics.records[0].result != ResultEmpty {
		t.Errorf("metrics = %+v, want one empty lookup", metrics.records)
	}
}

func TestRecommend_NilInputs(t *testing.T) {
	catalog := &fakeCatalog{}
	rec := newTestRecommender(t, catalog, DefaultConfig())

	if set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), nil, shortfall(1, 1)); !set.Empty() {
		t.Error("Recommend(nil snapshot) returned suggestions")
	}
	if set := rec.Recommend(context.Background(), admission.DefaultTaxonomy(), blockedCart(), nil); !set.Empty() {
		t.Error("Recommend(nil composition) returned suggestions")
	}
	if catalog.calls() != 0 {
		t.Errorf("catalog called %d times, want 0", catalog.calls())
	}
}

func TestNewRecommender_Validation(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", catalog: &fakeCatalog{}, cfg: DefaultConfig()},
		{name: "nil catalog", cfg: DefaultConfig(), wantErr: true},
		{name: "zero display cap", catalog: &fakeCatalog{}, cfg: Config{BatchSize: 5}, wantErr: true},
		{name: "batch smaller than cap", catalog: &fakeCatalog{}, cfg: Config{BatchSize: 2, DisplayCap: 4}, wantErr: true},
		{name: "negative timeout", catalog: &fakeCatalog{}, cfg: Config{BatchSize: 4, DisplayCap: 4, LookupTimeout: -time.Second}, wantErr: true},
		{name: "no timeout", catalog: &fakeCatalog{}, cfg: Config{BatchSize: 4, DisplayCap: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecommender(tt.catalog, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRecommender() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
