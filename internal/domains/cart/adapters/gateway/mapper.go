package gateway

import (
	"encoding/json"

	gatewayclient "github.com/sugarloaf/cakecart/internal/clients/http/cartgateway"
	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
)

// ToPayload converts the local aggregate into the gateway's wire shape.
// Checkout metadata rides through untouched.
func ToPayload(cart domain.Cart) gatewayclient.CartPayload {
	payload := gatewayclient.CartPayload{
		BakeryID:  cart.BakeryID,
		CartItems: make([]gatewayclient.ItemPayload, 0, len(cart.Items)),
	}
	if len(cart.CheckoutMeta) > 0 {
		payload.Metadata = append(json.RawMessage(nil), cart.CheckoutMeta...)
	}
	for _, item := range cart.Items {
		line := gatewayclient.ItemPayload{
			CakeName:      item.Config.Name,
			MainImageID:   item.Config.ImageRef,
			Quantity:      item.Quantity,
			CakeNote:      item.Config.Note,
			SubTotalPrice: item.SubTotalCents(),
			BakeryID:      item.BakeryID,
		}
		switch item.Ref.Kind {
		case domain.CakeKindAvailable:
			line.AvailableCakeID = item.Ref.ID
		case domain.CakeKindCustom:
			line.CustomCakeID = item.Ref.ID
		}
		payload.CartItems = append(payload.CartItems, line)
	}
	return payload
}

// FromPayload rebuilds a domain cart from the wire shape. Item ids are left
// empty; the store assigns session-local ids when it adopts the cart. A line
// carrying both cake ids is treated as custom; the wire contract says this
// never happens, but a remote bug must not crash hydration.
func FromPayload(payload gatewayclient.CartPayload) domain.Cart {
	cart := domain.Cart{BakeryID: payload.BakeryID}
	if len(payload.Metadata) > 0 {
		cart.CheckoutMeta = append(json.RawMessage(nil), payload.Metadata...)
	}
	for _, line := range payload.CartItems {
		ref := domain.AvailableCake(line.AvailableCakeID)
		if line.CustomCakeID != "" {
			ref = domain.CustomCake(line.CustomCakeID)
		}
		quantity := line.Quantity
		if quantity < 1 {
			quantity = 1
		}
		// The wire format carries only line subtotals. A subtotal not
		// divisible by the quantity truncates toward zero; the next local
		// edit reprices from the configuration and becomes authoritative.
		unit := line.SubTotalPrice / int64(quantity)
		if quantity > domain.MaxQuantity {
			quantity = domain.MaxQuantity
		}
		bakery := line.BakeryID
		if bakery == "" {
			bakery = payload.BakeryID
		}
		cart.Items = append(cart.Items, domain.CartItem{
			Ref:      ref,
			BakeryID: bakery,
			Config: domain.ItemConfig{
				Name:     line.CakeName,
				Note:     line.CakeNote,
				ImageRef: line.MainImageID,
				Size:     domain.TierForUnitPrice(unit),
			},
			UnitPriceCents: unit,
			Quantity:       quantity,
		})
	}
	return cart
}
