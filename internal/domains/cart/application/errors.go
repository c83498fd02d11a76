package application

import (
	"errors"
	"fmt"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid cart input")
	// ErrSyncFailed signals the last reconciliation attempt did not reach
	// the gateway; local state is intact and remains the source of truth.
	ErrSyncFailed = errors.New("cart reconciliation failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrItemNotFound) {
		return ports.ErrNotFound
	}
	if errors.Is(err, domain.ErrInvalidCakeKind) ||
		errors.Is(err, domain.ErrMissingCakeID) ||
		errors.Is(err, domain.ErrMissingBakery) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrInvalidSizeTier) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
