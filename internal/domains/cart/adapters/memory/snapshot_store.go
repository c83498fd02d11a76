package memory

import (
	"context"
	"sync"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps cart snapshots in memory. Used when no Redis or
// Postgres is configured; carts then survive only for the process lifetime.
type SnapshotStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{carts: map[string]domain.Cart{}}
}

func (s *SnapshotStore) Load(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[userID]
	if !ok {
		return nil, ports.ErrSnapshotMissing
	}
	clone := cart.Clone()
	return &clone, nil
}

func (s *SnapshotStore) Save(_ context.Context, userID string, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = cart.Clone()
	return nil
}

func (s *SnapshotStore) Erase(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
