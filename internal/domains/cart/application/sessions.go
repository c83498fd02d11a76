package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

// GatewayFactory binds a remote gateway to one session's bearer credential.
type GatewayFactory func(token string) ports.Gateway

// Manager hands out exactly one Store per session. There is no ambient
// global cart: the manager is constructed once and injected into the facade.
type Manager struct {
	newGateway GatewayFactory
	snapshots  ports.SnapshotStore
	events     ports.Events
	checkout   ports.CheckoutOrchestrator
	logger     *slog.Logger
	opts       []Option

	mu     sync.Mutex
	stores map[string]*Store
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerSnapshots binds shared local persistence.
func WithManagerSnapshots(store ports.SnapshotStore) ManagerOption {
	return func(m *Manager) {
		if store != nil {
			m.snapshots = store
		}
	}
}

// WithManagerEvents binds the shared notification sink.
func WithManagerEvents(e ports.Events) ManagerOption {
	return func(m *Manager) {
		if e != nil {
			m.events = e
		}
	}
}

// WithManagerCheckout binds the order-placement orchestrator.
func WithManagerCheckout(c ports.CheckoutOrchestrator) ManagerOption {
	return func(m *Manager) { m.checkout = c }
}

// WithManagerLogger injects a slog logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStoreOptions appends extra options applied to every store built.
func WithStoreOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.opts = append(m.opts, opts...) }
}

// NewManager builds a session registry. newGateway may be nil for a fully
// local deployment; sessions then run without remote sync.
func NewManager(newGateway GatewayFactory, opts ...ManagerOption) *Manager {
	m := &Manager{
		newGateway: newGateway,
		snapshots:  ports.NoopSnapshotStore,
		events:     ports.NoopEvents,
		logger:     slog.Default(),
		stores:     map[string]*Store{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// SessionKey derives the registry key for a request. Authenticated sessions
// key on the credential (tokens are opaque here; never parsed), anonymous
// ones on the caller-provided session id, and callers with neither get a
// throwaway key: a fresh empty cart.
func SessionKey(token, anonymousID string) string {
	if token = strings.TrimSpace(token); token != "" {
		sum := sha256.Sum256([]byte(token))
		return "u-" + hex.EncodeToString(sum[:12])
	}
	if anonymousID = strings.TrimSpace(anonymousID); anonymousID != "" {
		return "anon-" + anonymousID
	}
	return "anon-" + uuid.NewString()
}

// StoreFor returns the session's store, building and hydrating it on first
// use. Anonymous sessions (empty token) get a local-only store.
func (m *Manager) StoreFor(ctx context.Context, key, token string) *Store {
	m.mu.Lock()
	if store, ok := m.stores[key]; ok {
		m.mu.Unlock()
		return store
	}
	gateway := ports.NoopGateway
	if m.newGateway != nil && strings.TrimSpace(token) != "" {
		gateway = m.newGateway(token)
	}
	opts := append([]Option{
		WithGateway(gateway),
		WithSnapshotStore(m.snapshots),
		WithEvents(m.events),
		WithCheckout(m.checkout),
		WithLogger(m.logger),
		WithToken(token),
	}, m.opts...)
	store := NewStore(key, opts...)
	m.stores[key] = store
	m.mu.Unlock()

	store.Hydrate(ctx)
	return store
}

// Drop tears down a session's store (logout): the persisted local copy is
// erased and the store forgotten.
func (m *Manager) Drop(ctx context.Context, key string) error {
	m.mu.Lock()
	store, ok := m.stores[key]
	delete(m.stores, key)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return store.TearDown(ctx)
}
