package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	cartpostgres "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/persistence/postgres"
	platformpostgres "github.com/sugarloaf/cakecart/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge snapshots")
	}

	store := cartpostgres.NewSnapshotStore(db)
	purged, err := store.PurgeStale(ctx, snapshotTTLFromEnv())
	if err != nil {
		log.Fatalf("failed to purge cart snapshots: %v", err)
	}
	log.Printf("cart snapshot purge completed, %d removed", purged)
}

func snapshotTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("SNAPSHOT_TTL_HOURS"))
	if raw == "" {
		return cartpostgres.DefaultSnapshotTTL
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return cartpostgres.DefaultSnapshotTTL
	}
	return time.Duration(hours) * time.Hour
}
