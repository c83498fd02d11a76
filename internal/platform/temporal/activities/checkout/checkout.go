package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	cartapp "github.com/sugarloaf/cakecart/internal/domains/cart/application"
	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

const (
	// DeleteRemoteCartActivityName retires the remote cart after an order.
	DeleteRemoteCartActivityName = "checkout.activities.DeleteRemoteCart"
	// EraseSnapshotActivityName removes the persisted local cart copy.
	EraseSnapshotActivityName = "checkout.activities.EraseSnapshot"
)

// Activities groups activities that retire a cart after order placement.
type Activities struct {
	newGateway cartapp.GatewayFactory
	snapshots  cartports.SnapshotStore
}

// NewActivities wires the gateway factory and snapshot store into the
// Temporal activities bundle.
func NewActivities(newGateway cartapp.GatewayFactory, snapshots cartports.SnapshotStore) *Activities {
	return &Activities{newGateway: newGateway, snapshots: snapshots}
}

// DeleteRemoteCart deletes the user's remote cart. A cart that is already
// gone, or a session without a credential, counts as success.
func (a *Activities) DeleteRemoteCart(ctx context.Context, placement cartports.OrderPlacement) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.newGateway == nil {
		logger.Error("delete remote cart activity not initialized", "userId", placement.UserID)
		return errors.New("delete remote cart activity not initialized")
	}

	var hb deleteHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("DeleteRemoteCart already completed in prior attempt; skipping", "userId", placement.UserID)
		return nil
	}

	logger.Info("DeleteRemoteCart activity started", "userId", placement.UserID)
	err := a.newGateway(placement.Token).Delete(ctx)
	switch {
	case err == nil:
	case errors.Is(err, cartports.ErrRemoteCartMissing):
		logger.Info("remote cart already gone", "userId", placement.UserID)
	case errors.Is(err, cartports.ErrNotAuthenticated):
		logger.Info("no credential for remote cart; nothing to delete", "userId", placement.UserID)
	default:
		logger.Error("DeleteRemoteCart activity failed", "userId", placement.UserID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, deleteHeartbeat{Completed: true})
	logger.Info("DeleteRemoteCart activity completed", "userId", placement.UserID)
	return nil
}

// EraseSnapshot removes the user's persisted local cart copy.
func (a *Activities) EraseSnapshot(ctx context.Context, placement cartports.OrderPlacement) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.snapshots == nil {
		logger.Error("erase snapshot activity not initialized", "userId", placement.UserID)
		return errors.New("erase snapshot activity not initialized")
	}
	logger.Info("EraseSnapshot activity started", "userId", placement.UserID)
	if err := a.snapshots.Erase(ctx, placement.UserID); err != nil && !errors.Is(err, cartports.ErrSnapshotMissing) {
		logger.Error("EraseSnapshot activity failed", "userId", placement.UserID, "error", err)
		return err
	}
	logger.Info("EraseSnapshot activity completed", "userId", placement.UserID)
	return nil
}

type deleteHeartbeat struct {
	Completed bool
}
