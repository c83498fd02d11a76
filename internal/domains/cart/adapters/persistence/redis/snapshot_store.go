// Package redis persists cart snapshots as JSON documents in Redis, one key
// per user. This is the default persistence adapter: the cart is a session
// artifact, and a KV store with TTL matches its lifecycle.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

const defaultTTL = 30 * 24 * time.Hour

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore stores one cart document per user key.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore wraps a connected client. ttl <= 0 uses the default.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SnapshotStore{client: client, ttl: ttl}
}

func (s *SnapshotStore) Load(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, snapshotKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrSnapshotMissing
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart snapshot: %w", err)
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot: %w", err)
	}
	return &cart, nil
}

func (s *SnapshotStore) Save(ctx context.Context, userID string, cart domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Erase(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, snapshotKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart snapshot: %w", err)
	}
	return nil
}

func snapshotKey(userID string) string {
	return "cakecart:snapshot:" + userID
}
