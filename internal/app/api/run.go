package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	cakecartserver "github.com/sugarloaf/cakecart/go"

	gatewayclient "github.com/sugarloaf/cakecart/internal/clients/http/cartgateway"
	cartcheckout "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/checkout"
	cartevents "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/events"
	cartgateway "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/gateway"
	cartmemory "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/memory"
	cartobs "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/persistence/postgres"
	cartredis "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/persistence/redis"
	cartapp "github.com/sugarloaf/cakecart/internal/domains/cart/application"
	cartports "github.com/sugarloaf/cakecart/internal/domains/cart/ports"
	platformobservability "github.com/sugarloaf/cakecart/internal/platform/observability"
	platformpostgres "github.com/sugarloaf/cakecart/internal/platform/postgres"
	platformredis "github.com/sugarloaf/cakecart/internal/platform/redis"
)

// Run boots the cart HTTP API with observability, snapshot stores, the
// remote gateway, and checkout workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "cakecart-api"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	snapshots, cleanupSnapshots := buildSnapshotStore(ctx, cfg, logger)
	defer cleanupSnapshots()

	newGateway := buildGatewayFactory(cfg, logger)
	broadcaster := cartevents.NewBroadcaster()

	managerOpts := []cartapp.ManagerOption{
		cartapp.WithManagerSnapshots(snapshots),
		cartapp.WithManagerEvents(broadcaster),
		cartapp.WithManagerLogger(logger),
		cartapp.WithStoreOptions(cartapp.WithSyncTimeout(cfg.SyncTimeout)),
	}
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal checkout unavailable, retiring carts inline", slog.String("error", err.Error()))
		if newGateway != nil {
			managerOpts = append(managerOpts, cartapp.WithManagerCheckout(cartcheckout.NewInlineCheckout(newGateway, snapshots)))
		}
	} else {
		defer temporalClient.Close()
		managerOpts = append(managerOpts, cartapp.WithManagerCheckout(cartcheckout.NewTemporalCheckout(temporalClient)))
		logger.Info("Temporal checkout enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	manager := cartapp.NewManager(newGateway, managerOpts...)

	// Each session's store is wrapped in the tracing/metrics decorator once
	// and cached alongside the manager's registry.
	var decoratedMu sync.Mutex
	decorated := map[string]cartports.Service{}
	resolve := func(ctx context.Context, sessionKey, token string) (cartports.Service, error) {
		decoratedMu.Lock()
		if svc, ok := decorated[sessionKey]; ok {
			decoratedMu.Unlock()
			return svc, nil
		}
		decoratedMu.Unlock()
		store := manager.StoreFor(ctx, sessionKey, token)
		svc := cartobs.New(
			store,
			sessionKey,
			cartobs.WithLogger(logger),
			cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
			cartobs.WithMeter(instruments.Meter("internal.cart.application")),
		)
		decoratedMu.Lock()
		if existing, ok := decorated[sessionKey]; ok {
			svc = existing
		} else {
			decorated[sessionKey] = svc
		}
		decoratedMu.Unlock()
		return svc, nil
	}
	drop := func(ctx context.Context, sessionKey string) error {
		decoratedMu.Lock()
		delete(decorated, sessionKey)
		decoratedMu.Unlock()
		return manager.Drop(ctx, sessionKey)
	}

	handlers := cakecartserver.ApiHandleFunctions{
		CartAPI: cakecartserver.NewCartAPI(resolve, drop),
	}

	router := cakecartserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("cart API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("cart API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildSnapshotStore picks the best available local persistence: Redis,
// then Postgres, then process memory.
func buildSnapshotStore(ctx context.Context, cfg Config, logger *slog.Logger) (cartports.SnapshotStore, func()) {
	if redisClient, cleanup := platformredis.ConnectFromEnv(ctx, logger); redisClient != nil {
		return cartredis.NewSnapshotStore(redisClient, cfg.SnapshotTTL), cleanup
	}
	if db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger); db != nil {
		return cartpostgres.NewSnapshotStore(db), cleanup
	}
	logger.Warn("no durable snapshot store configured, carts will not survive a restart")
	return cartmemory.NewSnapshotStore(), func() {}
}

// buildGatewayFactory returns nil when no gateway base URL is configured;
// sessions then run local-only.
func buildGatewayFactory(cfg Config, logger *slog.Logger) cartapp.GatewayFactory {
	if cfg.GatewayBaseURL == "" {
		logger.Warn("GATEWAY_BASE_URL not set, carts run local-only")
		return nil
	}
	return func(token string) cartports.Gateway {
		client, err := gatewayclient.NewClient(cfg.GatewayBaseURL, token, nil)
		if err != nil {
			logger.Error("failed to build cart gateway client", slog.String("error", err.Error()))
			return cartports.NoopGateway
		}
		return cartgateway.NewRemote(client)
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
