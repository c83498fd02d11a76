package ports

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
)

var (
	// ErrNotFound signals an operation targeting an unknown cart item.
	ErrNotFound = errors.New("cart item not found")
	// ErrNoPendingSwitch signals a confirm/cancel with nothing awaiting confirmation.
	ErrNoPendingSwitch = errors.New("no bakery switch awaiting confirmation")
)

// AddStatus is the outcome class of an add attempt.
type AddStatus string

const (
	// AddAccepted means the item was merged or appended.
	AddAccepted AddStatus = "accepted"
	// AddNeedsConfirmation means the candidate came from a different bakery
	// and the cart was left untouched pending an explicit user decision.
	AddNeedsConfirmation AddStatus = "needsConfirmation"
)

// AddOutcome reports what an add attempt did. Item is set when accepted;
// Switch carries the pending request when confirmation is needed.
type AddOutcome struct {
	Status AddStatus
	Item   *domain.CartItem
	Switch *domain.SwitchRequest
}

// Snapshot is a read-only view of a cart store's current state.
type Snapshot struct {
	Items         []domain.CartItem
	BakeryID      string
	SyncState     domain.SyncState
	PendingSwitch *domain.SwitchRequest
	CheckoutMeta  json.RawMessage
	TotalCents    int64
}

// Service exposes cart use cases to adapters. Mutations never fail on
// network state; only reconciliation-related calls surface remote errors.
type Service interface {
	Snapshot(ctx context.Context) Snapshot
	AddItem(ctx context.Context, candidate domain.CartItem) (AddOutcome, error)
	EditItem(ctx context.Context, itemID string, cfg domain.ItemConfig) (domain.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int32) error
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
	ConfirmBakerySwitch(ctx context.Context) (AddOutcome, error)
	CancelBakerySwitch(ctx context.Context) error
	SetCheckoutMeta(ctx context.Context, meta json.RawMessage) error
	Sync(ctx context.Context) error
	CompleteOrder(ctx context.Context) error
	TearDown(ctx context.Context) error
}
