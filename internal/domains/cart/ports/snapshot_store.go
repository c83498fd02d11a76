package ports

import (
	"context"
	"errors"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
)

// ErrSnapshotMissing is returned by Load when no snapshot exists for the user.
var ErrSnapshotMissing = errors.New("no cart snapshot for user")

// SnapshotStore persists the local cart aggregate per user so it survives a
// process restart. Implementations must round-trip the full aggregate,
// including the bakery binding and checkout metadata.
type SnapshotStore interface {
	Load(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, userID string, cart domain.Cart) error
	Erase(ctx context.Context, userID string) error
}

// NoopSnapshotStore is a safe default when persistence is not wired.
var NoopSnapshotStore SnapshotStore = noopSnapshotStore{}

type noopSnapshotStore struct{}

func (noopSnapshotStore) Load(context.Context, string) (*domain.Cart, error) {
	return nil, ErrSnapshotMissing
}
func (noopSnapshotStore) Save(context.Context, string, domain.Cart) error { return nil }
func (noopSnapshotStore) Erase(context.Context, string) error             { return nil }
