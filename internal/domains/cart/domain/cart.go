package domain

import (
	"encoding/json"
	"errors"
)

// SyncState tracks how the local cart relates to its remote representation.
type SyncState string

const (
	SyncClean   SyncState = "clean"
	SyncDirty   SyncState = "dirty"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "syncError"
)

var (
	ErrBakeryMismatch = errors.New("item belongs to a different bakery than the cart")
	ErrItemNotFound   = errors.New("cart item not found")
	ErrEmptyBinding   = errors.New("non-empty cart must be bound to a bakery")
	ErrDanglingBinding = errors.New("empty cart cannot keep a bakery binding")
)

// Cart is the aggregate: an ordered item list bound to at most one bakery,
// plus opaque checkout metadata passed through to the gateway unmodified.
// Insertion order of Items is preserved for display.
type Cart struct {
	Items        []CartItem      `json:"items"`
	BakeryID     string          `json:"bakeryId,omitempty"`
	CheckoutMeta json.RawMessage `json:"checkoutMeta,omitempty"`
}

// Empty reports whether the cart holds no items.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Validate enforces the aggregate invariants: empty iff unbound, a single
// bakery across all items, and every item valid on its own.
func (c *Cart) Validate() error {
	if c.Empty() {
		if c.BakeryID != "" {
			return ErrDanglingBinding
		}
		return nil
	}
	if c.BakeryID == "" {
		return ErrEmptyBinding
	}
	for _, item := range c.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		if item.BakeryID != c.BakeryID {
			return ErrBakeryMismatch
		}
	}
	return nil
}

// Clone deep-copies the aggregate so snapshots handed to other goroutines or
// callers never alias the store's state.
func (c *Cart) Clone() Cart {
	out := Cart{BakeryID: c.BakeryID}
	if len(c.Items) > 0 {
		out.Items = make([]CartItem, len(c.Items))
		for i, item := range c.Items {
			out.Items[i] = item
			if len(item.Config.AddOns) > 0 {
				out.Items[i].Config.AddOns = append([]string(nil), item.Config.AddOns...)
			}
		}
	}
	if len(c.CheckoutMeta) > 0 {
		out.CheckoutMeta = append(json.RawMessage(nil), c.CheckoutMeta...)
	}
	return out
}

// Accepts reports whether a candidate can join the cart without a bakery
// switch: the cart is empty or already bound to the candidate's bakery.
func (c *Cart) Accepts(candidate CartItem) bool {
	return c.Empty() || c.BakeryID == candidate.BakeryID
}

// Upsert merges the candidate into an existing line for the same cake or
// appends it at the end. The candidate must already carry an ID; merged
// candidates keep the existing line's ID. Quantities saturate at MaxQuantity.
// Returns the resulting line.
func (c *Cart) Upsert(candidate CartItem) (CartItem, error) {
	if err := candidate.Validate(); err != nil {
		return CartItem{}, err
	}
	if !c.Accepts(candidate) {
		return CartItem{}, ErrBakeryMismatch
	}
	if candidate.Quantity > MaxQuantity {
		candidate.Quantity = MaxQuantity
	}
	for i := range c.Items {
		if c.Items[i].SameLine(candidate) {
			merged := int64(c.Items[i].Quantity) + int64(candidate.Quantity)
			if merged > int64(MaxQuantity) {
				merged = int64(MaxQuantity)
			}
			c.Items[i].Quantity = int32(merged)
			return c.Items[i], nil
		}
	}
	if c.Empty() {
		c.BakeryID = candidate.BakeryID
	}
	c.Items = append(c.Items, candidate)
	return candidate, nil
}

// Replace swaps an item's configuration and price in place, preserving its
// identity, bakery, cake reference, and quantity.
func (c *Cart) Replace(itemID string, cfg ItemConfig, unitPriceCents int64) (CartItem, error) {
	idx := c.index(itemID)
	if idx < 0 {
		return CartItem{}, ErrItemNotFound
	}
	item := c.Items[idx]
	item.Config = cfg
	item.UnitPriceCents = unitPriceCents
	if err := item.Validate(); err != nil {
		return CartItem{}, err
	}
	c.Items[idx] = item
	return item, nil
}

// SetQuantity updates a line's quantity; anything below one removes the line
// and anything above MaxQuantity is clamped to it. Returns true when the line
// was removed.
func (c *Cart) SetQuantity(itemID string, quantity int32) (bool, error) {
	if quantity < 1 {
		return true, c.Remove(itemID)
	}
	if quantity > MaxQuantity {
		quantity = MaxQuantity
	}
	idx := c.index(itemID)
	if idx < 0 {
		return false, ErrItemNotFound
	}
	c.Items[idx].Quantity = quantity
	return false, nil
}

// Remove deletes a line; dropping the last line clears the bakery binding.
func (c *Cart) Remove(itemID string) error {
	idx := c.index(itemID)
	if idx < 0 {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if c.Empty() {
		c.BakeryID = ""
	}
	return nil
}

// Clear empties the cart and drops the bakery binding. Checkout metadata is
// kept; it belongs to the session, not the item list.
func (c *Cart) Clear() {
	c.Items = nil
	c.BakeryID = ""
}

// TotalCents sums all line totals.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.SubTotalCents()
	}
	return total
}

func (c *Cart) index(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
