// Package gateway adapts the cart gateway HTTP client to the domain port.
package gateway

import (
	"context"
	"errors"

	gatewayclient "github.com/sugarloaf/cakecart/internal/clients/http/cartgateway"
	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

// Remote implements the outbound gateway port over the HTTP client.
type Remote struct {
	client *gatewayclient.Client
}

// NewRemote wires a gateway client into the port adapter.
func NewRemote(client *gatewayclient.Client) *Remote {
	return &Remote{client: client}
}

var _ ports.Gateway = (*Remote)(nil)

// Fetch loads the remote cart and converts it to the domain aggregate.
func (r *Remote) Fetch(ctx context.Context) (*domain.Cart, error) {
	if r == nil || r.client == nil {
		return nil, ports.ErrNotAuthenticated
	}
	payload, err := r.client.FetchCart(ctx)
	if err != nil {
		return nil, mapClientError(err)
	}
	cart := FromPayload(*payload)
	return &cart, nil
}

// Replace pushes the aggregate as a full overwrite.
func (r *Remote) Replace(ctx context.Context, cart domain.Cart) error {
	if r == nil || r.client == nil {
		return ports.ErrNotAuthenticated
	}
	return mapClientError(r.client.ReplaceCart(ctx, ToPayload(cart)))
}

// Delete removes the remote cart.
func (r *Remote) Delete(ctx context.Context) error {
	if r == nil || r.client == nil {
		return ports.ErrNotAuthenticated
	}
	return mapClientError(r.client.DeleteCart(ctx))
}

func mapClientError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gatewayclient.ErrCartNotFound):
		return ports.ErrRemoteCartMissing
	case errors.Is(err, gatewayclient.ErrNoCredential), errors.Is(err, gatewayclient.ErrUnauthorized):
		return ports.ErrNotAuthenticated
	default:
		return errors.Join(ports.ErrRemoteUnavailable, err)
	}
}
