package admission

import (
	"fmt"
	"strings"

	"checkered/cartgate/pkg/cart"
)

// Category is one of the fixed category buckets used by the composition rule.
type Category uint8

const (
	// Licensed items replicate a real-world manufacturer design.
	Licensed Category = 1 << iota

	// Fantasy items are original designs; they back Licensed and Premium items.
	Fantasy

	// Premium items are higher-tier items with their own Fantasy requirement.
	Premium
)

// String returns the lowercase category key.
func (c Category) String() string {
	switch c {
	case Licensed:
		return "licensed"
	case Fantasy:
		return "fantasy"
	case Premium:
		return "premium"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "licensed":
		*c = Licensed
	case "fantasy":
		*c = Fantasy
	case "premium":
		*c = Premium
	default:
		return fmt.Errorf("unknown category %q", string(text))
	}
	return nil
}

// Membership is the set of categories a product belongs to. The categories
// are independent facts; a product may hold any combination of them.
type Membership uint8

// Has reports whether the membership includes c.
func (m Membership) Has(c Category) bool {
	return m&Membership(c) != 0
}

// With returns the membership with c added.
func (m Membership) With(c Category) Membership {
	return m | Membership(c)
}

// Categories returns the member categories in Licensed, Fantasy, Premium order.
func (m Membership) Categories() []Category {
	var out []Category
	for _, c := range []Category{Licensed, Fantasy, Premium} {
		if m.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// CategoryRef binds a category bucket to an opaque catalog identifier and a
// shopper-facing label.
type CategoryRef struct {
	ID    string
	Label string
}

// Taxonomy maps the three category buckets to catalog identifiers so the
// engine can run against any catalog's identifier scheme.
type Taxonomy struct {
	Licensed CategoryRef
	Fantasy  CategoryRef
	Premium  CategoryRef
}

// Ref returns the reference configured for c.
func (t Taxonomy) Ref(c Category) CategoryRef {
	switch c {
	case Licensed:
		return t.Licensed
	case Fantasy:
		return t.Fantasy
	case Premium:
		return t.Premium
	default:
		return CategoryRef{}
	}
}

// Label returns the display label for c, falling back to the capitalized key.
func (t Taxonomy) Label(c Category) string {
	if label := t.Ref(c).Label; label != "" {
		return label
	}
	key := c.String()
	return strings.ToUpper(key[:1]) + key[1:]
}

// validate checks that every bucket has a distinct, non-empty identifier.
func (t Taxonomy) validate() error {
	seen := make(map[string]Category, 3)
	for _, c := range []Category{Licensed, Fantasy, Premium} {
		id := t.Ref(c).ID
		if id == "" {
			return fmt.Errorf("%w: %s category id is required", ErrInvalidRules, c)
		}
		if other, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s and %s share category id %q", ErrInvalidRules, other, c, id)
		}
		seen[id] = c
	}
	return nil
}

// Classifier resolves the category memberships of cart lines.
type Classifier struct {
	byID map[string]Category
}

// NewClassifier creates a classifier for the given taxonomy.
func NewClassifier(t Taxonomy) *Classifier {
	return &Classifier{
		byID: map[string]Category{
			t.Licensed.ID: Licensed,
			t.Fantasy.ID:  Fantasy,
			t.Premium.ID:  Premium,
		},
	}
}

// Classify returns the memberships of a line. Lines without category data
// belong to no category.
func (c *Classifier) Classify(line cart.Line) Membership {
	var m Membership
	for _, id := range line.CategoryIDs {
		if cat, ok := c.byID[id]; ok && id != "" {
			m = m.With(cat)
		}
	}
	return m
}
