package storage

import (
	"fmt"
	"sort"
	"time"

	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/remediation"
)

// ProductRecord is a catalog product as stored and imported.
type ProductRecord struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Handle      string          `json:"handle,omitempty" yaml:"handle,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	CategoryIDs []string        `json:"category_ids" yaml:"category_ids"`
	Variants    []VariantRecord `json:"variants" yaml:"variants"`

	// CreatedAt orders candidates, newest first. Zero means now.
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// VariantRecord is a stored product variant.
type VariantRecord struct {
	ID                string        `json:"id" yaml:"id"`
	Title             string        `json:"title,omitempty" yaml:"title,omitempty"`
	ManageInventory   bool          `json:"manage_inventory" yaml:"manage_inventory"`
	AllowBackorder    bool          `json:"allow_backorder" yaml:"allow_backorder"`
	InventoryQuantity *int          `json:"inventory_quantity,omitempty" yaml:"inventory_quantity,omitempty"`
	Prices            []PriceRecord `json:"prices,omitempty" yaml:"prices,omitempty"`
}

// PriceRecord is a variant price. An empty RegionID is the default price for
// the currency.
type PriceRecord struct {
	RegionID     string `json:"region_id,omitempty" yaml:"region_id,omitempty"`
	CurrencyCode string `json:"currency_code" yaml:"currency_code"`
	Amount       int64  `json:"amount" yaml:"amount"`
}

// Validate checks a record before it is written.
func (p *ProductRecord) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidRecord)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: product %s: title is required", ErrInvalidRecord, p.ID)
	}
	seen := make(map[string]struct{}, len(p.Variants))
	for i, v := range p.Variants {
		if v.ID == "" {
			return fmt.Errorf("%w: product %s: variant %d: id is required", ErrInvalidRecord, p.ID, i)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("%w: product %s: duplicate variant %s", ErrInvalidRecord, p.ID, v.ID)
		}
		seen[v.ID] = struct{}{}
		if v.InventoryQuantity != nil && *v.InventoryQuantity < 0 {
			return fmt.Errorf("%w: variant %s: inventory quantity must not be negative", ErrInvalidRecord, v.ID)
		}
		for _, pr := range v.Prices {
			if pr.CurrencyCode == "" {
				return fmt.Errorf("%w: variant %s: price currency is required", ErrInvalidRecord, v.ID)
			}
		}
	}
	return nil
}

// inventory returns the stock policy of the variant.
func (v VariantRecord) inventory() cart.Variant {
	inv := cart.Variant{
		ManageInventory: v.ManageInventory,
		AllowBackorder:  v.AllowBackorder,
	}
	if v.InventoryQuantity != nil {
		inv.InventoryQuantity = cart.Int(*v.InventoryQuantity)
	}
	return inv
}

// price resolves the price for a currency, preferring the region's price.
func (v VariantRecord) price(regionID, currencyCode string) *remediation.Price {
	var fallback *remediation.Price
	for _, pr := range v.Prices {
		if pr.CurrencyCode != currencyCode {
			continue
		}
		p := &remediation.Price{Amount: pr.Amount, CurrencyCode: pr.CurrencyCode}
		if pr.RegionID != "" && pr.RegionID == regionID {
			return p
		}
		if pr.RegionID == "" {
			fallback = p
		}
	}
	return fallback
}

// product converts the record for a pricing context.
func (p *ProductRecord) product(regionID, currencyCode string) remediation.Product {
	out := remediation.Product{
		ID:          p.ID,
		Title:       p.Title,
		Handle:      p.Handle,
		Thumbnail:   p.Thumbnail,
		CategoryIDs: append([]string(nil), p.CategoryIDs...),
		Variants:    make([]remediation.Variant, 0, len(p.Variants)),
	}
	sort.Strings(out.CategoryIDs)
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, remediation.Variant{
			ID:        v.ID,
			Title:     v.Title,
			Inventory: v.inventory(),
			Price:     v.price(regionID, currencyCode),
		})
	}
	return out
}
