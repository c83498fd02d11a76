package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

func TestBroadcasterFansOutToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	var first, second []string
	b.Subscribe(Subscriber{
		OnCartChanged: func(userID string, _ ports.Snapshot) { first = append(first, userID) },
	})
	b.Subscribe(Subscriber{
		OnCartChanged: func(userID string, _ ports.Snapshot) { second = append(second, userID) },
	})

	b.CartChanged("u-1", ports.Snapshot{BakeryID: "bk-1"})

	require.Equal(t, []string{"u-1"}, first)
	require.Equal(t, []string{"u-1"}, second)
}

func TestBroadcasterSkipsNilCallbacks(t *testing.T) {
	b := NewBroadcaster()

	var switches []string
	b.Subscribe(Subscriber{
		OnSwitchRequested: func(userID string, request domain.SwitchRequest) {
			switches = append(switches, request.ToBakeryID)
		},
	})

	// No OnCartChanged registered; must not panic.
	b.CartChanged("u-1", ports.Snapshot{})
	b.SwitchRequested("u-1", domain.SwitchRequest{FromBakeryID: "bk-1", ToBakeryID: "bk-2"})

	require.Equal(t, []string{"bk-2"}, switches)
}

func TestBroadcasterUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster()

	delivered := 0
	unsubscribe := b.Subscribe(Subscriber{
		OnCartChanged: func(string, ports.Snapshot) { delivered++ },
	})

	b.CartChanged("u-1", ports.Snapshot{})
	unsubscribe()
	b.CartChanged("u-1", ports.Snapshot{})

	require.Equal(t, 1, delivered)
}
