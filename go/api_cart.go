package cakecartserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

// ServiceResolver returns the cart service bound to a session key. The
// token is empty for anonymous sessions.
type ServiceResolver func(ctx context.Context, sessionKey, token string) (cartports.Service, error)

// SessionDropper tears a session down and forgets its store.
type SessionDropper func(ctx context.Context, sessionKey string) error

// CartAPI wires HTTP transport with the per-session cart services.
type CartAPI struct {
	resolve ServiceResolver
	drop    SessionDropper
}

// NewCartAPI creates a CartAPI backed by the provided resolver.
func NewCartAPI(resolve ServiceResolver, drop SessionDropper) CartAPI {
	return CartAPI{resolve: resolve, drop: drop}
}

func (api *CartAPI) service(c *gin.Context) (cartports.Service, bool) {
	svc, err := api.resolve(c.Request.Context(), sessionKey(c), sessionToken(c))
	if err != nil {
		respondCartServiceError(c, err)
		return nil, false
	}
	return svc, true
}

// Get /v1/cart
// Returns the current cart snapshot
func (api *CartAPI) GetCart(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromSnapshot(svc.Snapshot(c.Request.Context())))
}

// Post /v1/cart/items
// Attempts to add a cake to the cart; a cross-bakery candidate parks a
// switch request instead of mutating
func (api *CartAPI) AddItem(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	var payload carthttpmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	candidate, err := carthttpmapper.ToCandidate(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	outcome, err := svc.AddItem(c.Request.Context(), candidate)
	if err != nil {
		respondCartServiceError(c, err)
		return
	}
	view := carthttpmapper.FromOutcome(outcome)
	if outcome.Status == cartports.AddNeedsConfirmation {
		c.JSON(http.StatusConflict, view)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Put /v1/cart/items/:itemId
// Replaces a line's configuration and reprices it
func (api *CartAPI) EditItem(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	var payload carthttpmapper.EditItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := svc.EditItem(c.Request.Context(), c.Param("itemId"), carthttpmapper.ToConfig(payload))
	if err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromItem(item))
}

// Put /v1/cart/items/:itemId/quantity
// Sets a line's quantity; zero or below removes the line
func (api *CartAPI) UpdateQuantity(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	var payload carthttpmapper.QuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := svc.UpdateQuantity(c.Request.Context(), c.Param("itemId"), payload.Quantity); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromSnapshot(svc.Snapshot(c.Request.Context())))
}

// Delete /v1/cart/items/:itemId
// Removes a line from the cart
func (api *CartAPI) RemoveItem(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	if err := svc.RemoveItem(c.Request.Context(), c.Param("itemId")); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromSnapshot(svc.Snapshot(c.Request.Context())))
}

// Delete /v1/cart
// Empties the cart and releases the bakery binding
func (api *CartAPI) ClearCart(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	if err := svc.ClearCart(c.Request.Context()); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/cart/switch/confirm
// Discards the cart and starts over with the parked candidate
func (api *CartAPI) ConfirmBakerySwitch(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	outcome, err := svc.ConfirmBakerySwitch(c.Request.Context())
	if err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromOutcome(outcome))
}

// Post /v1/cart/switch/cancel
// Drops the parked candidate and keeps the cart as-is
func (api *CartAPI) CancelBakerySwitch(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	if err := svc.CancelBakerySwitch(c.Request.Context()); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Put /v1/cart/checkout-meta
// Stores opaque checkout details alongside the cart
func (api *CartAPI) SetCheckoutMeta(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	var meta json.RawMessage
	if err := c.ShouldBindJSON(&meta); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := svc.SetCheckoutMeta(c.Request.Context(), meta); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/cart/sync
// Forces reconciliation and waits for the in-flight push to settle
func (api *CartAPI) SyncCart(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	if err := svc.Sync(c.Request.Context()); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromSnapshot(svc.Snapshot(c.Request.Context())))
}

// Post /v1/cart/order
// Completes the order: deletes the remote cart and resets local state
func (api *CartAPI) CompleteOrder(c *gin.Context) {
	svc, ok := api.service(c)
	if !ok {
		return
	}
	if err := svc.CompleteOrder(c.Request.Context()); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromSnapshot(svc.Snapshot(c.Request.Context())))
}

// Delete /v1/cart/session
// Forgets the session's local cart without touching the remote copy
func (api *CartAPI) DropSession(c *gin.Context) {
	if err := api.drop(c.Request.Context(), sessionKey(c)); err != nil {
		respondCartServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
