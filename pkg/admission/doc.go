// Package admission decides whether a cart may proceed to checkout.
//
// The engine is a set of pure evaluators over a cart.Snapshot:
//
//  1. Classifier - maps a line's opaque catalog category IDs to Licensed,
//     Fantasy and Premium memberships using an injected Taxonomy
//  2. Composition - aggregates category-tagged quantities and runs the
//     waterfall quota allocation
//  3. Stock - checks every line against its variant's inventory policy
//  4. Compose - combines both results into a single Decision
//
// # Waterfall Allocation
//
// Fantasy items are the currency that unlocks Licensed and Premium items.
// Premium demand is reserved from the Fantasy pool first; the Licensed pass
// then reads what remains:
//
//	pool := fantasy
//	premium pass:  required = premium * PremiumToFantasyRatio
//	               missing  = max(0, required - pool)
//	               pool    -= min(pool, required)
//	licensed pass: required = ceil(licensed / LicensedToFantasyRatio)
//	               missing  = max(0, required - pool)
//
// Each pass is a reducer returning its own allocation record, so swapping the
// order would be a visible change to the code and to the recorded numbers.
//
// # Basic Usage
//
//	eng, err := admission.NewEngine(admission.DefaultRules())
//	if err != nil {
//	    return err
//	}
//
//	eval, err := eng.Evaluate(snapshot)
//	if err != nil {
//	    return err // malformed snapshot
//	}
//	if !eval.Decision.Passed {
//	    redirectToCart(eval.Decision.MessageText())
//	}
//
// # Fail-Safe Defaults
//
//   - Missing category data contributes nothing and never blocks.
//   - A line without variant data is handled by UnknownAvailabilityPolicy,
//     which defaults to UnknownAvailabilityBlock (available quantity 0).
//   - Non-positive quantities and negative inventory are rejected with
//     cart.ErrInvalidSnapshot rather than silently miscounted.
//
// # Thread Safety
//
// An Engine is immutable after construction and safe for concurrent use.
// Decisions are never cached; every request evaluates a fresh snapshot.
package admission
