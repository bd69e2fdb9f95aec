package admission

import "strings"

// CompositionResult is the outcome of the composition quota rule.
type CompositionResult struct {
	LicensedCount int `json:"licensed_count"`
	FantasyCount  int `json:"fantasy_count"`
	PremiumCount  int `json:"premium_count"`

	// TotalCount is the sum of all line quantities, tagged or not.
	TotalCount int `json:"total_count"`

	MissingFantasyForLicensed int `json:"missing_fantasy_for_licensed"`
	MissingFantasyForPremium  int `json:"missing_fantasy_for_premium"`

	// HasInvalidQuantity is set when a non-Fantasy line exceeds the per-line cap.
	HasInvalidQuantity bool `json:"has_invalid_quantity"`

	// IsBulk is set when TotalCount exceeds the configured maximum.
	IsBulk bool `json:"is_bulk"`

	// Premium and Licensed record each waterfall pass.
	Premium  PremiumAllocation  `json:"premium_allocation"`
	Licensed LicensedAllocation `json:"licensed_allocation"`

	Passed  bool    `json:"passed"`
	Message *string `json:"message"`
}

// PremiumAllocation is the result of the Premium pass.
type PremiumAllocation struct {
	// Required is the number of Fantasy items needed to back all Premium items.
	Required int `json:"required"`

	// Missing is the unmet part of Required.
	Missing int `json:"missing"`

	// Reserved is the number of Fantasy items taken from the pool.
	Reserved int `json:"reserved"`

	// PoolAfter is the Fantasy pool left for the Licensed pass.
	PoolAfter int `json:"pool_after"`
}

// LicensedAllocation is the result of the Licensed pass.
type LicensedAllocation struct {
	// PoolBefore is the Fantasy pool available to this pass.
	PoolBefore int `json:"pool_before"`

	Required int `json:"required"`
	Missing  int `json:"missing"`
}

// UnderStockedLine describes a line whose requested quantity cannot be met.
type UnderStockedLine struct {
	LineID            string `json:"line_id"`
	Title             string `json:"title"`
	RequestedQuantity int    `json:"requested_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

// StockResult is the outcome of the stock availability rule.
type StockResult struct {
	UnderStockedLines []UnderStockedLine `json:"under_stocked_lines"`
	Passed            bool               `json:"passed"`
	Message           *string            `json:"message"`
}

// Decision is the single verdict consumed by the checkout gate.
type Decision struct {
	Passed  bool    `json:"passed"`
	Message *string `json:"message"`
}

// MessageText returns the message or an empty string when there is none.
func (d *Decision) MessageText() string {
	if d == nil || d.Message == nil {
		return ""
	}
	return *d.Message
}

// Evaluation bundles the results of one admission evaluation.
type Evaluation struct {
	Composition *CompositionResult `json:"composition"`
	Stock       *StockResult       `json:"stock"`
	Decision    *Decision          `json:"decision"`
}

// BlockReasons lists why the evaluation was blocked, in message order. A
// bulk order reports only bulk_order for composition, as its message does.
// It is empty for a passing evaluation.
func (e *Evaluation) BlockReasons() []string {
	var reasons []string
	if c := e.Composition; c != nil && c.IsBulk {
		reasons = append(reasons, "bulk_order")
	} else if c != nil {
		if c.HasInvalidQuantity {
			reasons = append(reasons, "quantity_cap")
		}
		if c.MissingFantasyForPremium > 0 {
			reasons = append(reasons, "premium_shortfall")
		}
		if c.MissingFantasyForLicensed > 0 {
			reasons = append(reasons, "licensed_shortfall")
		}
	}
	if s := e.Stock; s != nil && !s.Passed {
		reasons = append(reasons, "out_of_stock")
	}
	return reasons
}

// joinMessages joins the non-empty messages with a single space. It returns
// nil when there is nothing to join.
func joinMessages(parts ...*string) *string {
	var kept []string
	for _, p := range parts {
		if p != nil && *p != "" {
			kept = append(kept, *p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, " ")
	return &joined
}
