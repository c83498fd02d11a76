// Package checkout provides CheckoutOrchestrator implementations: a durable
// Temporal-backed one and an inline fallback.
package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	cartapp "github.com/sugarloaf/cakecart/internal/domains/cart/application"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
	checkoutworkflows "github.com/sugarloaf/cakecart/internal/platform/temporal/workflows/checkout"
)

var (
	_ ports.CheckoutOrchestrator = (*TemporalCheckout)(nil)
	_ ports.CheckoutOrchestrator = (*InlineCheckout)(nil)
)

// TemporalCheckout starts the order completion workflow on a Temporal
// cluster.
type TemporalCheckout struct {
	client    client.Client
	taskQueue string
}

// NewTemporalCheckout wires a Temporal client into the orchestrator.
func NewTemporalCheckout(c client.Client) *TemporalCheckout {
	return &TemporalCheckout{client: c, taskQueue: checkoutworkflows.OrderCompletionTaskQueue}
}

// PlaceOrder starts the durable workflow and waits for it to finish. One
// workflow runs per user at a time; a placement that races an identical one
// adopts the running execution instead of failing.
func (o *TemporalCheckout) PlaceOrder(ctx context.Context, placement ports.OrderPlacement) error {
	if o == nil || o.client == nil {
		return errors.New("temporal checkout not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildOrderCompletionWorkflowID(placement, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		checkoutworkflows.OrderCompletionWorkflowName,
		checkoutworkflows.OrderCompletionWorkflowInput{Placement: placement, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId).Get(ctx, nil)
		}
		return err
	}
	return run.Get(ctx, nil)
}

// InlineCheckout retires the cart synchronously without durable
// orchestration, useful for tests or dev fallbacks.
type InlineCheckout struct {
	newGateway cartapp.GatewayFactory
	snapshots  ports.SnapshotStore
}

// NewInlineCheckout wraps the gateway factory and snapshot store for
// synchronous execution.
func NewInlineCheckout(newGateway cartapp.GatewayFactory, snapshots ports.SnapshotStore) *InlineCheckout {
	return &InlineCheckout{newGateway: newGateway, snapshots: snapshots}
}

// PlaceOrder deletes the remote cart and erases the persisted copy in-process.
func (o *InlineCheckout) PlaceOrder(ctx context.Context, placement ports.OrderPlacement) error {
	if o == nil || o.newGateway == nil {
		return errors.New("inline checkout not configured")
	}
	err := o.newGateway(placement.Token).Delete(ctx)
	if err != nil && !errors.Is(err, ports.ErrRemoteCartMissing) && !errors.Is(err, ports.ErrNotAuthenticated) {
		return err
	}
	if o.snapshots == nil {
		return nil
	}
	if err := o.snapshots.Erase(ctx, placement.UserID); err != nil && !errors.Is(err, ports.ErrSnapshotMissing) {
		return err
	}
	return nil
}

func buildOrderCompletionWorkflowID(placement ports.OrderPlacement, traceComponent string) string {
	return fmt.Sprintf("order-completion-%s-%s", hashUserID(placement.UserID), traceComponent)
}

func hashUserID(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
