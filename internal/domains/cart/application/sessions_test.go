package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	cartmemory "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/memory"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

func TestSessionKey_TokenNeverAppearsInKey(t *testing.T) {
	key := SessionKey("super-secret-token", "")
	require.True(t, strings.HasPrefix(key, "u-"))
	require.NotContains(t, key, "super-secret-token")
	require.Equal(t, key, SessionKey("super-secret-token", "ignored-when-authenticated"))
}

func TestSessionKey_AnonymousUsesCallerID(t *testing.T) {
	require.Equal(t, "anon-device-7", SessionKey("", "device-7"))
}

func TestSessionKey_NoCredentialsMintsThrowaway(t *testing.T) {
	first := SessionKey("", "")
	second := SessionKey("", "")
	require.True(t, strings.HasPrefix(first, "anon-"))
	require.NotEqual(t, first, second)
}

func TestStoreFor_ReturnsSameStorePerKey(t *testing.T) {
	manager := NewManager(nil, WithManagerSnapshots(cartmemory.NewSnapshotStore()))
	ctx := context.Background()

	a := manager.StoreFor(ctx, "anon-1", "")
	b := manager.StoreFor(ctx, "anon-1", "")
	c := manager.StoreFor(ctx, "anon-2", "")
	require.Same(t, a, b)
	require.NotSame(t, a, c)
}

func TestStoreFor_SessionsAreIsolated(t *testing.T) {
	manager := NewManager(nil, WithManagerSnapshots(cartmemory.NewSnapshotStore()))
	ctx := context.Background()

	a := manager.StoreFor(ctx, "anon-1", "")
	_, err := a.AddItem(ctx, candidate("bk-1", "cake-1", 1))
	require.NoError(t, err)

	b := manager.StoreFor(ctx, "anon-2", "")
	require.Empty(t, b.Snapshot(ctx).Items)
}

func TestStoreFor_AuthenticatedSessionGetsGateway(t *testing.T) {
	var seenTokens []string
	gw := newFakeGateway()
	manager := NewManager(func(token string) ports.Gateway {
		seenTokens = append(seenTokens, token)
		return gw
	}, WithManagerSnapshots(cartmemory.NewSnapshotStore()))
	ctx := context.Background()

	store := manager.StoreFor(ctx, "u-abc", "token-1")
	_, err := store.AddItem(ctx, candidate("bk-1", "cake-1", 1))
	require.NoError(t, err)
	require.NoError(t, store.Sync(ctx))

	require.Equal(t, []string{"token-1"}, seenTokens)
	require.Equal(t, 1, gw.replaceCount())
}

func TestDrop_ForgetsStoreAndErasesSnapshot(t *testing.T) {
	snapshots := cartmemory.NewSnapshotStore()
	manager := NewManager(nil, WithManagerSnapshots(snapshots))
	ctx := context.Background()

	store := manager.StoreFor(ctx, "anon-1", "")
	_, err := store.AddItem(ctx, candidate("bk-1", "cake-1", 1))
	require.NoError(t, err)

	require.NoError(t, manager.Drop(ctx, "anon-1"))
	_, err = snapshots.Load(ctx, "anon-1")
	require.ErrorIs(t, err, ports.ErrSnapshotMissing)

	fresh := manager.StoreFor(ctx, "anon-1", "")
	require.NotSame(t, store, fresh)
	require.Empty(t, fresh.Snapshot(ctx).Items)
}

func TestDrop_UnknownKeyIsANoop(t *testing.T) {
	manager := NewManager(nil)
	require.NoError(t, manager.Drop(context.Background(), "anon-missing"))
}
