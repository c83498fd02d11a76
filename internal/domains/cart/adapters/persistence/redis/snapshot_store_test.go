package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SnapshotStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotStore(client, ttl), mr
}

func sampleCart() domain.Cart {
	return domain.Cart{
		BakeryID:     "bk-1",
		CheckoutMeta: json.RawMessage(`{"delivery":"pickup"}`),
		Items: []domain.CartItem{{
			ID:             "ci-1",
			Ref:            domain.AvailableCake("cake-1"),
			BakeryID:       "bk-1",
			Config:         domain.ItemConfig{Name: "Carrot Cake", Size: domain.SizeMedium, AddOns: []string{"candles"}},
			UnitPriceCents: 4250,
			Quantity:       2,
		}},
	}
}

func TestSaveLoad_RoundTripsAggregate(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u-1", sampleCart()))

	loaded, err := store.Load(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, "bk-1", loaded.BakeryID)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, "ci-1", loaded.Items[0].ID)
	require.Equal(t, []string{"candles"}, loaded.Items[0].Config.AddOns)
	require.JSONEq(t, `{"delivery":"pickup"}`, string(loaded.CheckoutMeta))
}

func TestLoad_MissingSnapshot(t *testing.T) {
	store, _ := newTestStore(t, 0)
	_, err := store.Load(context.Background(), "u-unknown")
	require.ErrorIs(t, err, ports.ErrSnapshotMissing)
}

func TestSave_AppliesTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u-1", sampleCart()))
	require.Equal(t, time.Hour, mr.TTL("cakecart:snapshot:u-1"))

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(ctx, "u-1")
	require.ErrorIs(t, err, ports.ErrSnapshotMissing)
}

func TestErase_RemovesKey(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u-1", sampleCart()))
	require.NoError(t, store.Erase(ctx, "u-1"))
	_, err := store.Load(ctx, "u-1")
	require.ErrorIs(t, err, ports.ErrSnapshotMissing)

	// Erasing an absent key is not an error.
	require.NoError(t, store.Erase(ctx, "u-1"))
}

func TestSave_OverwritesPrevious(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u-1", sampleCart()))
	require.NoError(t, store.Save(ctx, "u-1", domain.Cart{}))

	loaded, err := store.Load(ctx, "u-1")
	require.NoError(t, err)
	require.True(t, loaded.Empty())
	require.Empty(t, loaded.BakeryID)
}
