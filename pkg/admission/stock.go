package admission

import "checkered/cartgate/pkg/cart"

// Stock evaluates the stock availability rule for a snapshot.
func (e *Engine) Stock(snap *cart.Snapshot) (*StockResult, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return e.stock(snap), nil
}

// stock assumes a validated snapshot.
func (e *Engine) stock(snap *cart.Snapshot) *StockResult {
	under := make([]UnderStockedLine, 0)

	for _, line := range snap.Lines {
		v := line.Variant
		switch {
		case v == nil:
			if e.rules.UnknownAvailability == UnknownAvailabilityAllow {
				continue
			}
			under = append(under, underStocked(line, 0))
		case v.AllowBackorder:
			continue
		case !v.ManageInventory:
			continue
		case line.Quantity > v.Available():
			under = append(under, underStocked(line, v.Available()))
		}
	}

	result := &StockResult{
		UnderStockedLines: under,
		Passed:            len(under) == 0,
	}
	if !result.Passed {
		titles := make([]string, len(under))
		for i, u := range under {
			titles[i] = u.Title
		}
		msg := e.printer.Sprintf(msgOutOfStock, quoteTitles(titles), len(under))
		result.Message = &msg
	}

	return result
}

func underStocked(line cart.Line, available int) UnderStockedLine {
	title := line.Title
	if title == "" {
		title = line.ID
	}
	return UnderStockedLine{
		LineID:            line.ID,
		Title:             title,
		RequestedQuantity: line.Quantity,
		AvailableQuantity: available,
	}
}
