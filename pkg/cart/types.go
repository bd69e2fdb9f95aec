package cart

// Snapshot is an immutable view of a shopping cart at evaluation time.
type Snapshot struct {
	// ID is the cart identifier.
	ID string `json:"id" yaml:"id"`

	// RegionID and CurrencyCode are the pricing context used when fetching
	// remediation candidates.
	RegionID     string `json:"region_id,omitempty" yaml:"region_id,omitempty"`
	CurrencyCode string `json:"currency_code,omitempty" yaml:"currency_code,omitempty"`

	// Lines is the ordered list of cart lines.
	Lines []Line `json:"lines" yaml:"lines"`
}

// Line is a single cart line item.
type Line struct {
	// ID is the line item identifier.
	ID string `json:"id" yaml:"id"`

	// ProductID and VariantID identify what is being purchased.
	ProductID string `json:"product_id" yaml:"product_id"`
	VariantID string `json:"variant_id,omitempty" yaml:"variant_id,omitempty"`

	// Title is the display title shown to the shopper.
	Title string `json:"title" yaml:"title"`

	// Quantity is the requested quantity. Must be positive.
	Quantity int `json:"quantity" yaml:"quantity"`

	// CategoryIDs are the opaque catalog category identifiers of the product.
	// nil means category data was not loaded.
	CategoryIDs []string `json:"category_ids,omitempty" yaml:"category_ids,omitempty"`

	// Variant carries inventory fields. nil means the variant is unknown.
	Variant *Variant `json:"variant,omitempty" yaml:"variant,omitempty"`
}

// Variant holds the inventory policy of a product variant.
type Variant struct {
	ManageInventory bool `json:"manage_inventory" yaml:"manage_inventory"`
	AllowBackorder  bool `json:"allow_backorder" yaml:"allow_backorder"`

	// InventoryQuantity is nil when the stock level is not known.
	InventoryQuantity *int `json:"inventory_quantity,omitempty" yaml:"inventory_quantity,omitempty"`
}

// TotalQuantity returns the sum of all line quantities.
func (s *Snapshot) TotalQuantity() int {
	total := 0
	for _, line := range s.Lines {
		total += line.Quantity
	}
	return total
}

// ProductIDs returns the set of product IDs present in the cart.
func (s *Snapshot) ProductIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Lines))
	for _, line := range s.Lines {
		if line.ProductID != "" {
			ids[line.ProductID] = struct{}{}
		}
	}
	return ids
}

// Available returns the known inventory quantity, treating an absent value as 0.
func (v *Variant) Available() int {
	if v == nil || v.InventoryQuantity == nil {
		return 0
	}
	return *v.InventoryQuantity
}

// Purchasable reports whether at least one unit of the variant can be bought:
// inventory is untracked, backorders are allowed, or stock is positive.
func (v *Variant) Purchasable() bool {
	if v == nil {
		return false
	}
	return !v.ManageInventory || v.AllowBackorder || v.Available() > 0
}

// Int returns a pointer to n. It is a convenience for building variants.
func Int(n int) *int {
	return &n
}
