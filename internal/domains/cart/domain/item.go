package domain

import "errors"

var (
	ErrMissingBakery   = errors.New("cart item bakery id is required")
	ErrInvalidQuantity = errors.New("cart item quantity must be at least one")
	ErrNegativePrice   = errors.New("cart item unit price cannot be negative")
)

// MaxQuantity caps a single line's quantity. Quantities arrive from clients
// unbounded; merges and updates saturate at the cap so a line can never wrap
// int32 into a negative quantity or subtotal.
const MaxQuantity int32 = 999

// CartItem is a single cake line in the cart. UnitPriceCents is derived from
// Config when the item is created or edited; Quantity is always >= 1 once the
// item is inside a cart.
type CartItem struct {
	ID             string     `json:"id"`
	Ref            CakeRef    `json:"ref"`
	BakeryID       string     `json:"bakeryId"`
	Config         ItemConfig `json:"config"`
	UnitPriceCents int64      `json:"unitPriceCents"`
	Quantity       int32      `json:"quantity"`
}

// Validate enforces the per-item invariants.
func (i CartItem) Validate() error {
	if err := i.Ref.Validate(); err != nil {
		return err
	}
	if i.BakeryID == "" {
		return ErrMissingBakery
	}
	if i.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if i.UnitPriceCents < 0 {
		return ErrNegativePrice
	}
	return i.Config.Validate()
}

// SameLine reports whether another item would merge into this one: the same
// cake from the same bakery occupies a single row.
func (i CartItem) SameLine(other CartItem) bool {
	return i.BakeryID == other.BakeryID && i.Ref.Equal(other.Ref)
}

// SubTotalCents is the line total.
func (i CartItem) SubTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}
