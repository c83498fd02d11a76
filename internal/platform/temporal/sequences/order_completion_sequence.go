package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
	checkoutactivities "github.com/sugarloaf/cakecart/internal/platform/temporal/activities/checkout"
)

// RunOrderCompletionSequence executes the ordered set of activities that
// retire a cart after order placement: remote delete first, then erase the
// persisted local copy.
func RunOrderCompletionSequence(ctx workflow.Context, placement cartports.OrderPlacement) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("order completion sequence started", "userId", placement.UserID)

	deleteOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	eraseOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
		},
	}

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, deleteOptions), checkoutactivities.DeleteRemoteCartActivityName, placement).Get(ctx, nil); err != nil {
		logger.Error("order completion sequence remote delete failed", "userId", placement.UserID, "error", err)
		return err
	}
	logger.Info("order completion sequence deleted remote cart", "userId", placement.UserID)

	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, eraseOptions), checkoutactivities.EraseSnapshotActivityName, placement).Get(ctx, nil); err != nil {
		logger.Error("order completion sequence snapshot erase failed", "userId", placement.UserID, "error", err)
		return err
	}
	logger.Info("order completion sequence completed", "userId", placement.UserID)
	return nil
}
