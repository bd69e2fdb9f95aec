package checkout

import (
	"context"
	"errors"

	"checkered/cartgate/pkg/cart"
)

// ErrCartNotFound is returned by a CartStore for an unknown cart ID.
var ErrCartNotFound = errors.New("cart not found")

// CartStore loads fresh cart snapshots.
type CartStore interface {
	// Snapshot returns the current state of the cart. It returns an error
	// wrapping ErrCartNotFound when the cart does not exist.
	Snapshot(ctx context.Context, cartID string) (*cart.Snapshot, error)
}
