package ports

import "context"

// OrderPlacement identifies whose remote cart to retire after an order.
// Token is the user's bearer credential, passed through so a worker process
// can act on the gateway without sharing the API's session state.
type OrderPlacement struct {
	UserID string
	Token  string
}

// CheckoutOrchestrator retires a cart after successful order placement:
// delete the remote representation, then erase the persisted local copy.
// Implementations may run durably (Temporal) or inline.
type CheckoutOrchestrator interface {
	PlaceOrder(ctx context.Context, placement OrderPlacement) error
}
