package admission

import (
	"fmt"

	"golang.org/x/text/message"

	"checkered/cartgate/pkg/cart"
)

// Engine evaluates admission rules against cart snapshots.
type Engine struct {
	// rules contains the validated rule set
	rules Rules

	// classifier resolves line categories
	classifier *Classifier

	// printer renders shopper-facing messages
	printer *message.Printer
}

// NewEngine creates an engine for the given rules.
func NewEngine(rules Rules) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	return &Engine{
		rules:      rules,
		classifier: NewClassifier(rules.Taxonomy),
		printer:    newPrinter(rules.Locale),
	}, nil
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Classifier returns the engine's category classifier.
func (e *Engine) Classifier() *Classifier {
	return e.classifier
}

// Evaluate validates the snapshot, runs the composition and stock rules and
// composes the decision. The two rules are independent of each other.
func (e *Engine) Evaluate(snap *cart.Snapshot) (*Evaluation, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	composition := e.composition(snap)
	stock := e.stock(snap)

	return &Evaluation{
		Composition: composition,
		Stock:       stock,
		Decision:    Compose(composition, stock),
	}, nil
}

// Compose combines the rule results into one decision. The composition
// message always precedes the stock message.
func Compose(composition *CompositionResult, stock *StockResult) *Decision {
	return &Decision{
		Passed:  composition.Passed && stock.Passed,
		Message: joinMessages(composition.Message, stock.Message),
	}
}
