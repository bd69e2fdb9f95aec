package admission

import "checkered/cartgate/pkg/cart"

// tally is the single-walk aggregation of a snapshot.
type tally struct {
	licensed int
	fantasy  int
	premium  int
	total    int

	// invalidQuantity is set when a non-Fantasy line exceeds the per-line cap.
	invalidQuantity bool
}

// countLines walks every line once. A line tagged with several categories
// contributes to each of them; total covers all lines.
func countLines(lines []cart.Line, classifier *Classifier, quantityCap int) tally {
	var t tally
	for _, line := range lines {
		m := classifier.Classify(line)
		if m.Has(Licensed) {
			t.licensed += line.Quantity
		}
		if m.Has(Fantasy) {
			t.fantasy += line.Quantity
		} else if line.Quantity > quantityCap {
			t.invalidQuantity = true
		}
		if m.Has(Premium) {
			t.premium += line.Quantity
		}
		t.total += line.Quantity
	}
	return t
}

// premiumPass reserves Fantasy backing for Premium items from the pool.
func premiumPass(pool, premium, ratio int) PremiumAllocation {
	if premium <= 0 {
		return PremiumAllocation{PoolAfter: pool}
	}

	required := premium * ratio
	reserved := min(pool, required)
	return PremiumAllocation{
		Required:  required,
		Missing:   max(0, required-pool),
		Reserved:  reserved,
		PoolAfter: pool - reserved,
	}
}

// licensedPass checks Licensed demand against the pool left by the Premium pass.
func licensedPass(pool, licensed, ratio int) LicensedAllocation {
	required := ceilDiv(licensed, ratio)
	return LicensedAllocation{
		PoolBefore: pool,
		Required:   required,
		Missing:    max(0, required-pool),
	}
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// Composition evaluates the composition quota rule for a snapshot.
func (e *Engine) Composition(snap *cart.Snapshot) (*CompositionResult, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return e.composition(snap), nil
}

// composition assumes a validated snapshot.
func (e *Engine) composition(snap *cart.Snapshot) *CompositionResult {
	r := e.rules
	t := countLines(snap.Lines, e.classifier, r.NonFantasyQuantityCap)

	premium := premiumPass(t.fantasy, t.premium, r.PremiumToFantasyRatio)
	licensed := licensedPass(premium.PoolAfter, t.licensed, r.LicensedToFantasyRatio)

	result := &CompositionResult{
		LicensedCount:             t.licensed,
		FantasyCount:              t.fantasy,
		PremiumCount:              t.premium,
		TotalCount:                t.total,
		MissingFantasyForPremium:  premium.Missing,
		MissingFantasyForLicensed: licensed.Missing,
		HasInvalidQuantity:        t.invalidQuantity,
		IsBulk:                    t.total > r.MaxTotalItems,
		Premium:                   premium,
		Licensed:                  licensed,
	}
	result.Passed = !result.HasInvalidQuantity &&
		!result.IsBulk &&
		result.MissingFantasyForPremium == 0 &&
		result.MissingFantasyForLicensed == 0
	result.Message = e.compositionMessage(result)

	return result
}

// compositionMessage builds the shopper message. A bulk order suppresses every
// other message.
func (e *Engine) compositionMessage(res *CompositionResult) *string {
	r := e.rules
	tax := r.Taxonomy

	if res.IsBulk {
		msg := e.printer.Sprintf(msgBulkOrder, res.TotalCount, r.MaxTotalItems)
		return &msg
	}

	var parts []*string
	if res.HasInvalidQuantity {
		msg := e.printer.Sprintf(msgQuantityCap, r.NonFantasyQuantityCap, tax.Label(Fantasy))
		parts = append(parts, &msg)
	}
	if res.MissingFantasyForPremium > 0 {
		msg := e.printer.Sprintf(msgPremiumShortfall,
			res.MissingFantasyForPremium, r.PremiumToFantasyRatio, tax.Label(Fantasy), tax.Label(Premium))
		parts = append(parts, &msg)
	}
	if res.MissingFantasyForLicensed > 0 {
		msg := e.printer.Sprintf(msgLicensedShortfall,
			res.MissingFantasyForLicensed, r.LicensedToFantasyRatio, tax.Label(Fantasy), tax.Label(Licensed))
		parts = append(parts, &msg)
	}

	return joinMessages(parts...)
}
