package ports

import (
	"context"
	"errors"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
)

var (
	// ErrRemoteCartMissing is returned by Fetch when the gateway has no cart.
	ErrRemoteCartMissing = errors.New("remote cart does not exist")
	// ErrNotAuthenticated means no bearer credential is available; the cart
	// keeps working local-only and reconciliation stays unsynced.
	ErrNotAuthenticated = errors.New("no credential for remote cart gateway")
	// ErrRemoteUnavailable wraps transport failures and non-success statuses.
	ErrRemoteUnavailable = errors.New("remote cart gateway unavailable")
)

// Gateway is the remote cart resource: fetch, full replace, delete.
type Gateway interface {
	Fetch(ctx context.Context) (*domain.Cart, error)
	Replace(ctx context.Context, cart domain.Cart) error
	Delete(ctx context.Context) error
}

// NoopGateway is a safe default for local-only carts.
var NoopGateway Gateway = noopGateway{}

type noopGateway struct{}

func (noopGateway) Fetch(context.Context) (*domain.Cart, error) { return nil, ErrNotAuthenticated }
func (noopGateway) Replace(context.Context, domain.Cart) error  { return ErrNotAuthenticated }
func (noopGateway) Delete(context.Context) error                { return ErrNotAuthenticated }
