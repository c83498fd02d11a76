package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	gatewayclient "github.com/sugarloaf/cakecart/internal/clients/http/cartgateway"
	cartgateway "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/gateway"
	cartpostgres "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/persistence/postgres"
	cartredis "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/persistence/redis"
	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
	platformobservability "github.com/sugarloaf/cakecart/internal/platform/observability"
	platformpostgres "github.com/sugarloaf/cakecart/internal/platform/postgres"
	platformredis "github.com/sugarloaf/cakecart/internal/platform/redis"
	checkoutactivities "github.com/sugarloaf/cakecart/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/sugarloaf/cakecart/internal/platform/temporal/workflows/checkout"
)

func main() {
	ctx := context.Background()
	const serviceName = "cakecart-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	snapshots, cleanupSnapshots := buildSnapshotStore(ctx, logger)
	defer cleanupSnapshots()
	activities := checkoutactivities.NewActivities(buildGatewayFactory(logger), snapshots)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.OrderCompletionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.OrderCompletionWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.OrderCompletionWorkflowName})
	w.RegisterActivityWithOptions(activities.DeleteRemoteCart, activity.RegisterOptions{Name: checkoutactivities.DeleteRemoteCartActivityName})
	w.RegisterActivityWithOptions(activities.EraseSnapshot, activity.RegisterOptions{Name: checkoutactivities.EraseSnapshotActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.OrderCompletionTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildSnapshotStore(ctx context.Context, logger *slog.Logger) (cartports.SnapshotStore, func()) {
	if redisClient, cleanup := platformredis.ConnectFromEnv(ctx, logger); redisClient != nil {
		return cartredis.NewSnapshotStore(redisClient, snapshotTTLFromEnv()), cleanup
	}
	if db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger); db != nil {
		return cartpostgres.NewSnapshotStore(db), cleanup
	}
	logger.Warn("worker has no durable snapshot store, erase activity is a no-op")
	return cartports.NoopSnapshotStore, func() {}
}

func buildGatewayFactory(logger *slog.Logger) func(token string) cartports.Gateway {
	baseURL := strings.TrimSpace(os.Getenv("GATEWAY_BASE_URL"))
	if baseURL == "" {
		logger.Warn("GATEWAY_BASE_URL not set, remote cart deletes will be skipped")
		return func(string) cartports.Gateway { return cartports.NoopGateway }
	}
	return func(token string) cartports.Gateway {
		client, err := gatewayclient.NewClient(baseURL, token, nil)
		if err != nil {
			logger.Error("failed to build cart gateway client", slog.String("error", err.Error()))
			return cartports.NoopGateway
		}
		return cartgateway.NewRemote(client)
	}
}

func snapshotTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("SNAPSHOT_TTL_HOURS"))
	if raw == "" {
		return cartpostgres.DefaultSnapshotTTL
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return cartpostgres.DefaultSnapshotTTL
	}
	return hours
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
