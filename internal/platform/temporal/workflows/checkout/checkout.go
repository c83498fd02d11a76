// Package checkout defines the durable workflow that retires a cart after
// an order is placed.
package checkout

import (
	"go.temporal.io/sdk/workflow"

	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
	"github.com/sugarloaf/cakecart/internal/platform/temporal/sequences"
)

const (
	// OrderCompletionTaskQueue hosts the order completion workflow and its
	// activities.
	OrderCompletionTaskQueue = "cakecart-order-completion"
	// OrderCompletionWorkflowName is the registered workflow name.
	OrderCompletionWorkflowName = "checkout.workflows.OrderCompletion"
)

// OrderCompletionWorkflowInput carries the placement plus the trace
// component used to correlate the workflow with the originating request.
type OrderCompletionWorkflowInput struct {
	Placement cartports.OrderPlacement
	TraceID   string
}

// OrderCompletionWorkflow retires a user's cart after order placement.
func OrderCompletionWorkflow(ctx workflow.Context, input OrderCompletionWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("order completion workflow started", "userId", input.Placement.UserID, "traceId", input.TraceID)
	if err := sequences.RunOrderCompletionSequence(ctx, input.Placement); err != nil {
		logger.Error("order completion workflow failed", "userId", input.Placement.UserID, "error", err)
		return err
	}
	logger.Info("order completion workflow completed", "userId", input.Placement.UserID)
	return nil
}
