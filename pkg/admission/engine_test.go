package admission

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/text/language"

	"checkered/cartgate/pkg/cart"
)

func strPtr(s string) *string { return &s }

func TestCompose(t *testing.T) {
	tests := []struct {
		name        string
		composition *CompositionResult
		stock       *StockResult
		wantPassed  bool
		wantMessage *string
	}{
		{
			name:        "both pass",
			composition: &CompositionResult{Passed: true},
			stock:       &StockResult{Passed: true},
			wantPassed:  true,
		},
		{
			name:        "composition first then stock",
			composition: &CompositionResult{Message: strPtr("M1")},
			stock:       &StockResult{Message: strPtr("M2")},
			wantMessage: strPtr("M1 M2"),
		},
		{
			name:        "only stock fails",
			composition: &CompositionResult{Passed: true},
			stock:       &StockResult{Message: strPtr("M2")},
			wantMessage: strPtr("M2"),
		},
		{
			name:        "only composition fails",
			composition: &CompositionResult{Message: strPtr("M1")},
			stock:       &StockResult{Passed: true},
			wantMessage: strPtr("M1"),
		},
		{
			name:        "empty messages are dropped",
			composition: &CompositionResult{Message: strPtr("")},
			stock:       &StockResult{Passed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.composition, tt.stock)
			if got.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v", got.Passed, tt.wantPassed)
			}
			if !reflect.DeepEqual(got.Message, tt.wantMessage) {
				t.Errorf("Message = %v, want %v", got.MessageText(), tt.wantMessage)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	eng := newTestEngine(t)

	snap := snapshot(
		line("prem", 1, "premium"),
		line("fan", 1, "fantasy"),
		cart.Line{ID: "ghost", Title: "Ghost Rider", Quantity: 1, CategoryIDs: []string{"fantasy"}},
	)

	eval, err := eng.Evaluate(snap)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if eval.Decision.Passed {
		t.Error("Decision.Passed = true, want false")
	}

	// The ghost line still counts as Fantasy, so the Premium item is backed.
	if eval.Composition.MissingFantasyForPremium != 0 {
		t.Errorf("MissingFantasyForPremium = %d, want 0", eval.Composition.MissingFantasyForPremium)
	}
	if len(eval.Stock.UnderStockedLines) != 1 || eval.Stock.UnderStockedLines[0].AvailableQuantity != 0 {
		t.Errorf("UnderStockedLines = %+v, want ghost line with 0 available", eval.Stock.UnderStockedLines)
	}

	want := `"Ghost Rider" is out of stock.`
	if got := eval.Decision.MessageText(); got != want {
		t.Errorf("Decision message = %q, want %q", got, want)
	}

	if got := eval.BlockReasons(); !reflect.DeepEqual(got, []string{"out_of_stock"}) {
		t.Errorf("BlockReasons() = %v, want [out_of_stock]", got)
	}
}

func TestEvaluate_MessageOrder(t *testing.T) {
	eng := newTestEngine(t)

	snap := snapshot(
		line("prem", 1, "premium"),
		line("fan", 1, "fantasy"),
		cart.Line{ID: "x", Title: "Sold Out Sedan", Quantity: 1, Variant: &cart.Variant{ManageInventory: true}},
	)

	eval, err := eng.Evaluate(snap)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	m1 := *eval.Composition.Message
	m2 := *eval.Stock.Message
	if got, want := eval.Decision.MessageText(), m1+" "+m2; got != want {
		t.Errorf("Decision message = %q, want %q", got, want)
	}

	wantReasons := []string{"premium_shortfall", "out_of_stock"}
	if got := eval.BlockReasons(); !reflect.DeepEqual(got, wantReasons) {
		t.Errorf("BlockReasons() = %v, want %v", got, wantReasons)
	}
}

func TestEvaluate_BulkReasonsFollowMessage(t *testing.T) {
	eng := newTestEngine(t)

	snap := snapshot(
		line("prem", 15, "premium"),
		cart.Line{ID: "x", Title: "Sold Out Sedan", Quantity: 1, Variant: &cart.Variant{ManageInventory: true}},
	)

	eval, err := eng.Evaluate(snap)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	c := eval.Composition
	if !c.IsBulk || !c.HasInvalidQuantity || c.MissingFantasyForPremium == 0 {
		t.Fatalf("Composition = %+v, want bulk with quantity and premium violations", c)
	}

	wantReasons := []string{"bulk_order", "out_of_stock"}
	if got := eval.BlockReasons(); !reflect.DeepEqual(got, wantReasons) {
		t.Errorf("BlockReasons() = %v, want %v", got, wantReasons)
	}
}

func TestEvaluate_Passing(t *testing.T) {
	eng := newTestEngine(t)

	eval, err := eng.Evaluate(snapshot(line("fan", 3, "fantasy"), line("lic", 1, "licensed")))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !eval.Decision.Passed || eval.Decision.Message != nil {
		t.Errorf("Decision = %+v, want passed with nil message", eval.Decision)
	}
	if reasons := eval.BlockReasons(); len(reasons) != 0 {
		t.Errorf("BlockReasons() = %v, want none", reasons)
	}
}

func TestEvaluate_InvalidSnapshot(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Evaluate(snapshot(cart.Line{ID: "a", Quantity: 0}))
	if !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("Evaluate() error = %v, want %v", err, cart.ErrInvalidQuantity)
	}

	var lineErr *cart.LineError
	if !errors.As(err, &lineErr) || lineErr.LineID != "a" {
		t.Errorf("Evaluate() error = %v, want LineError for line a", err)
	}
}

func TestEvaluation_JSON(t *testing.T) {
	eng := newTestEngine(t)

	eval, err := eng.Evaluate(snapshot(line("fan", 1, "fantasy")))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	data, err := json.Marshal(eval.Decision)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if got, want := string(data), `{"passed":true,"message":null}`; got != want {
		t.Errorf("decision JSON = %s, want %s", got, want)
	}
}

func TestNewEngine_InvalidRules(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
	}{
		{name: "zero max items", rules: DefaultRules().WithMaxTotalItems(0)},
		{name: "zero premium ratio", rules: DefaultRules().WithRatios(0, 2)},
		{name: "negative licensed ratio", rules: DefaultRules().WithRatios(2, -1)},
		{name: "zero quantity cap", rules: DefaultRules().WithNonFantasyQuantityCap(0)},
		{name: "unknown policy", rules: DefaultRules().WithUnknownAvailability("maybe")},
		{
			name: "missing category id",
			rules: DefaultRules().WithTaxonomy(Taxonomy{
				Licensed: CategoryRef{ID: "l"},
				Fantasy:  CategoryRef{ID: "f"},
			}),
		},
		{
			name: "shared category id",
			rules: DefaultRules().WithTaxonomy(Taxonomy{
				Licensed: CategoryRef{ID: "same"},
				Fantasy:  CategoryRef{ID: "same"},
				Premium:  CategoryRef{ID: "p"},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := NewEngine(tt.rules)
			if !errors.Is(err, ErrInvalidRules) {
				t.Errorf("NewEngine() error = %v, want %v", err, ErrInvalidRules)
			}
			if eng != nil {
				t.Error("NewEngine() returned an engine for invalid rules")
			}
		})
	}
}

func TestNewEngine_UnsupportedLocaleFallsBack(t *testing.T) {
	eng, err := NewEngine(DefaultRules().WithLocale(language.Japanese))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	res, err := eng.Stock(snapshot(cart.Line{ID: "a", Title: "Red Racer", Quantity: 1}))
	if err != nil {
		t.Fatalf("Stock() error = %v", err)
	}
	if got, want := *res.Message, `"Red Racer" is out of stock.`; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(DefaultTaxonomy())

	tests := []struct {
		name       string
		categories []string
		want       Membership
	}{
		{name: "none", want: 0},
		{name: "fantasy", categories: []string{"fantasy"}, want: Membership(Fantasy)},
		{name: "licensed premium", categories: []string{"licensed", "premium"}, want: Membership(Licensed).With(Premium)},
		{name: "unknown ignored", categories: []string{"vintage", "fantasy"}, want: Membership(Fantasy)},
		{name: "duplicates", categories: []string{"premium", "premium"}, want: Membership(Premium)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(cart.Line{CategoryIDs: tt.categories})
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got.Categories(), tt.want.Categories())
			}
		})
	}
}

func TestCategory_Text(t *testing.T) {
	for _, c := range []Category{Licensed, Fantasy, Premium} {
		text, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText() error = %v", err)
		}

		var got Category
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if got != c {
			t.Errorf("UnmarshalText(%q) = %v, want %v", text, got, c)
		}
	}

	var c Category
	if err := c.UnmarshalText([]byte("vintage")); err == nil {
		t.Error("UnmarshalText(vintage) error = nil, want error")
	}
}

func TestTaxonomy_Label(t *testing.T) {
	tax := Taxonomy{Fantasy: CategoryRef{ID: "f", Label: "Original"}}

	if got := tax.Label(Fantasy); got != "Original" {
		t.Errorf("Label(Fantasy) = %q, want Original", got)
	}
	if got := tax.Label(Premium); got != "Premium" {
		t.Errorf("Label(Premium) = %q, want Premium", got)
	}
}
