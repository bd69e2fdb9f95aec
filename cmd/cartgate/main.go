// Cartgate is a cart admission-control service.
//
// It decides whether a shopping cart may proceed to checkout by applying
// composition rules (bulk size, premium and licensed items that must be
// paired with fantasy items, the quantity cap on non-fantasy items) and a
// stock availability rule, and suggests products that would fix a blocked
// cart.
//
// Usage:
//
//	# Start the HTTP service
//	cartgate serve --config /etc/cartgate/config.yaml
//
//	# Evaluate a cart file, exiting 1 when it is blocked
//	cartgate check cart.json
//
//	# Validate a configuration file
//	cartgate config validate --config config.yaml
//
//	# Load products into the catalog
//	cartgate catalog import products.yaml
//
//	# Show version information
//	cartgate version
package main

import "os"

func main() {
	os.Exit(Execute())
}
