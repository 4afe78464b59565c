package cart

import "github.com/hiho-nelson/go-shopify-storefront/internal/shopify"

// txn is the tentative transaction behind each optimistic mutation:
// snapshot the cart, apply the local change, then commit the server's
// confirmed state or revert to the snapshot. The snapshot is a deep copy,
// so a revert restores the exact pre-mutation state regardless of what
// happened in between.
type txn struct {
	prev *shopify.Cart
}

// beginLocked snapshots the cart and applies the optimistic mutation.
// The derived total quantity is recomputed; monetary totals are left
// untouched because tax and discount math is opaque to the client.
// Caller must hold s.mu.
func (s *Store) beginLocked(apply func(c *shopify.Cart)) *txn {
	t := &txn{prev: s.cart.Clone()}
	apply(s.cart)
	s.cart.TotalQuantity = s.cart.SumQuantities()
	return t
}

// commitLocked adopts the server-authoritative state wholesale.
func (s *Store) commitLocked(confirmed *shopify.Cart) {
	s.cart = confirmed
}

// revertLocked restores the pre-mutation snapshot.
func (s *Store) revertLocked(t *txn) {
	s.cart = t.prev
}
