package admission

import (
	"fmt"

	"golang.org/x/text/language"
)

// UnknownAvailabilityPolicy determines how lines without variant data are
// treated by the stock evaluator.
type UnknownAvailabilityPolicy string

const (
	// UnknownAvailabilityBlock records the line as under-stocked with an
	// available quantity of zero. This is the default.
	UnknownAvailabilityBlock UnknownAvailabilityPolicy = "block"

	// UnknownAvailabilityAllow lets the line pass unchecked.
	UnknownAvailabilityAllow UnknownAvailabilityPolicy = "allow"
)

// Default rule coefficients.
const (
	DefaultMaxTotalItems          = 14
	DefaultPremiumToFantasyRatio  = 2
	DefaultLicensedToFantasyRatio = 2
	DefaultNonFantasyQuantityCap  = 1
)

// Rules contains the tunable parameters of the admission engine.
type Rules struct {
	// Taxonomy maps the category buckets to catalog identifiers.
	Taxonomy Taxonomy

	// MaxTotalItems is the largest total quantity admitted; larger carts are
	// bulk orders.
	// Default: 14.
	MaxTotalItems int

	// PremiumToFantasyRatio is the number of Fantasy items that back each
	// Premium item.
	// Default: 2.
	PremiumToFantasyRatio int

	// LicensedToFantasyRatio is the number of Licensed items unlocked by one
	// Fantasy item.
	// Default: 2.
	LicensedToFantasyRatio int

	// NonFantasyQuantityCap is the per-line quantity limit for lines that are
	// not tagged Fantasy.
	// Default: 1.
	NonFantasyQuantityCap int

	// UnknownAvailability decides how lines without variant data are treated.
	// Default: UnknownAvailabilityBlock.
	UnknownAvailability UnknownAvailabilityPolicy

	// Locale selects the message catalog used for shopper-facing messages.
	// Default: English.
	Locale language.Tag
}

// DefaultTaxonomy returns placeholder category identifiers. Deployments are
// expected to override the IDs with their catalog's values.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Licensed: CategoryRef{ID: "licensed", Label: "Licensed"},
		Fantasy:  CategoryRef{ID: "fantasy", Label: "Fantasy"},
		Premium:  CategoryRef{ID: "premium", Label: "Premium"},
	}
}

// DefaultRules returns the default rule set.
func DefaultRules() Rules {
	return Rules{
		Taxonomy:               DefaultTaxonomy(),
		MaxTotalItems:          DefaultMaxTotalItems,
		PremiumToFantasyRatio:  DefaultPremiumToFantasyRatio,
		LicensedToFantasyRatio: DefaultLicensedToFantasyRatio,
		NonFantasyQuantityCap:  DefaultNonFantasyQuantityCap,
		UnknownAvailability:    UnknownAvailabilityBlock,
		Locale:                 language.English,
	}
}

// Validate validates the rule set.
func (r Rules) Validate() error {
	if err := r.Taxonomy.validate(); err != nil {
		return err
	}

	if r.MaxTotalItems <= 0 {
		return fmt.Errorf("%w: max total items must be positive", ErrInvalidRules)
	}
	if r.PremiumToFantasyRatio <= 0 {
		return fmt.Errorf("%w: premium to fantasy ratio must be positive", ErrInvalidRules)
	}
	if r.LicensedToFantasyRatio <= 0 {
		return fmt.Errorf("%w: licensed to fantasy ratio must be positive", ErrInvalidRules)
	}
	if r.NonFantasyQuantityCap <= 0 {
		return fmt.Errorf("%w: non-fantasy quantity cap must be positive", ErrInvalidRules)
	}

	switch r.UnknownAvailability {
	case UnknownAvailabilityBlock, UnknownAvailabilityAllow:
		// Valid
	default:
		return fmt.Errorf("%w: invalid unknown availability policy %q", ErrInvalidRules, r.UnknownAvailability)
	}

	return nil
}

// WithTaxonomy sets the category taxonomy.
func (r Rules) WithTaxonomy(t Taxonomy) Rules {
	r.Taxonomy = t
	return r
}

// WithMaxTotalItems sets the bulk-order threshold.
func (r Rules) WithMaxTotalItems(n int) Rules {
	r.MaxTotalItems = n
	return r
}

// WithRatios sets the Premium and Licensed to Fantasy ratios.
func (r Rules) WithRatios(premium, licensed int) Rules {
	r.PremiumToFantasyRatio = premium
	r.LicensedToFantasyRatio = licensed
	return r
}

// WithNonFantasyQuantityCap sets the per-line cap for non-Fantasy lines.
func (r Rules) WithNonFantasyQuantityCap(n int) Rules {
	r.NonFantasyQuantityCap = n
	return r
}

// WithUnknownAvailability sets the policy for lines without variant data.
func (r Rules) WithUnknownAvailability(p UnknownAvailabilityPolicy) Rules {
	r.UnknownAvailability = p
	return r
}

// WithLocale sets the message locale.
func (r Rules) WithLocale(tag language.Tag) Rules {
	r.Locale = tag
	return r
}
