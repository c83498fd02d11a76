package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
	"github.com/sugarloaf/cakecart/internal/platform/migrations"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// DefaultSnapshotTTL is how long an untouched snapshot survives before the
// purger reclaims it. Mirrors the Redis adapter's expiry.
const DefaultSnapshotTTL = 30 * 24 * time.Hour

// SnapshotStore persists cart snapshots in Postgres, one row per user.
// Durable alternative to the Redis adapter for deployments without a KV
// store.
type SnapshotStore struct {
	db *gorm.DB
}

func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Load(ctx context.Context, userID string) (*domain.Cart, error) {
	var record migrations.CartSnapshotRecord
	err := s.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrSnapshotMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	return fromRecord(record)
}

func (s *SnapshotStore) Save(ctx context.Context, userID string, cart domain.Cart) error {
	record, err := toRecord(userID, cart)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Erase(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Delete(&migrations.CartSnapshotRecord{}, "user_id = ?", userID).Error
	if err != nil {
		return fmt.Errorf("erase cart snapshot: %w", err)
	}
	return nil
}

// PurgeStale deletes snapshots that have not been touched within ttl.
// Redis rows expire on their own; this is the Postgres equivalent, run as a
// scheduled job.
func (s *SnapshotStore) PurgeStale(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	cutoff := time.Now().Add(-ttl)
	result := s.db.WithContext(ctx).
		Delete(&migrations.CartSnapshotRecord{}, "updated_at < ?", cutoff)
	if result.Error != nil {
		return 0, fmt.Errorf("purge stale cart snapshots: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toRecord(userID string, cart domain.Cart) (migrations.CartSnapshotRecord, error) {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return migrations.CartSnapshotRecord{}, fmt.Errorf("marshal cart items: %w", err)
	}
	names := make(pq.StringArray, 0, len(cart.Items))
	for _, item := range cart.Items {
		names = append(names, item.Config.Name)
	}
	return migrations.CartSnapshotRecord{
		UserID:       userID,
		BakeryID:     cart.BakeryID,
		Items:        items,
		CakeNames:    names,
		CheckoutMeta: cart.CheckoutMeta,
	}, nil
}

func fromRecord(record migrations.CartSnapshotRecord) (*domain.Cart, error) {
	cart := domain.Cart{BakeryID: record.BakeryID}
	if len(record.Items) > 0 {
		if err := json.Unmarshal(record.Items, &cart.Items); err != nil {
			return nil, fmt.Errorf("unmarshal cart items: %w", err)
		}
	}
	if len(record.CheckoutMeta) > 0 {
		cart.CheckoutMeta = json.RawMessage(record.CheckoutMeta)
	}
	return &cart, nil
}
