package ports

import "github.com/sugarloaf/cakecart/internal/domains/cart/domain"

// Events receives store notifications for reactive consumers: the cart view
// re-renders on CartChanged, the confirmation modal opens on SwitchRequested.
// Implementations must not call back into the store synchronously.
type Events interface {
	CartChanged(userID string, snapshot Snapshot)
	SwitchRequested(userID string, request domain.SwitchRequest)
}

// NoopEvents discards all notifications.
var NoopEvents Events = noopEvents{}

type noopEvents struct{}

func (noopEvents) CartChanged(string, Snapshot)                 {}
func (noopEvents) SwitchRequested(string, domain.SwitchRequest) {}
