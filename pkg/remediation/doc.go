// Package remediation suggests catalog products that would unblock a cart.
//
// When the composition rule reports a Fantasy shortfall, the Recommender
// fetches a batch of Fantasy products from a Catalog, drops products already
// in the cart and products without a purchasable variant, and truncates the
// result to a display cap.
//
// Remediation is best-effort. Lookup failures and timeouts produce an empty
// Set; they are logged and counted but never returned as errors, so they
// cannot affect the admission decision.
//
// # Usage
//
//	rec, err := remediation.NewRecommender(store, remediation.DefaultConfig(),
//		remediation.WithLogger(logger),
//		remediation.WithMetrics(collector),
//	)
//	set := rec.Recommend(ctx, rules.Taxonomy, snapshot, eval.Composition)
package remediation
