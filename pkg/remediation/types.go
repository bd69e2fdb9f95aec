package remediation

import (
	"context"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/cart"
)

// Catalog lists products by category membership. Implementations compute
// prices and inventory fields for the region and currency of the query.
type Catalog interface {
	ListByCategory(ctx context.Context, q Query) ([]Product, error)
}

// Query selects candidate products.
type Query struct {
	// CategoryID is the opaque catalog identifier of the category.
	CategoryID string

	// RegionID and CurrencyCode select the pricing context.
	RegionID     string
	CurrencyCode string

	// Limit bounds the number of returned products. Zero means no limit.
	Limit int
}

// Product is a catalog product with its variants.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	CategoryIDs []string  `json:"category_ids,omitempty"`
	Variants    []Variant `json:"variants"`
}

// Variant is a purchasable option of a product.
type Variant struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`

	// Inventory holds the stock policy of the variant.
	Inventory cart.Variant `json:"inventory"`

	// Price is the calculated price for the query's region. nil when the
	// variant has no price in that context.
	Price *Price `json:"price,omitempty"`
}

// Price is an amount in the currency's minor unit.
type Price struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// Purchasable reports whether any variant of the product can be bought.
func (p Product) Purchasable() bool {
	for i := range p.Variants {
		if p.Variants[i].Inventory.Purchasable() {
			return true
		}
	}
	return false
}

// Suggestion is a product annotated with the category it satisfies.
type Suggestion struct {
	Product   Product            `json:"product"`
	Satisfies admission.Category `json:"satisfies"`
}

// Set is an ordered list of suggestions. It is recomputed per request.
type Set struct {
	// Category is the category in shortfall. Zero when nothing is missing.
	Category admission.Category `json:"category,omitempty"`

	// Missing is the number of items of Category needed to unblock the cart.
	Missing int `json:"missing"`

	Suggestions []Suggestion `json:"suggestions"`
}

// Empty reports whether the set has no suggestions.
func (s *Set) Empty() bool {
	return s == nil || len(s.Suggestions) == 0
}

func emptySet() *Set {
	return &Set{Suggestions: []Suggestion{}}
}
