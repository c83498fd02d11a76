package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

// Store owns one user's cart aggregate. All mutations are single state
// transitions under the store's lock; the only suspension point is the
// reconciliation write, which runs off the caller's path (see reconciler.go).
type Store struct {
	userID    string
	token     string
	gateway   ports.Gateway
	snapshots ports.SnapshotStore
	events    ports.Events
	checkout  ports.CheckoutOrchestrator
	logger    *slog.Logger
	now       func() time.Time

	syncTimeout time.Duration

	hydrate sync.Once

	mu      sync.Mutex
	idle    *sync.Cond
	cart    domain.Cart
	state   domain.SyncState
	pending *domain.SwitchRequest
	seq     uint64

	// reconciler bookkeeping, guarded by mu
	version  uint64
	inFlight bool
	queued   bool
}

// Option configures a Store.
type Option func(*Store)

// WithGateway binds the remote cart gateway for this user's session.
func WithGateway(g ports.Gateway) Option {
	return func(s *Store) {
		if g != nil {
			s.gateway = g
		}
	}
}

// WithSnapshotStore binds local persistence.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(s *Store) {
		if store != nil {
			s.snapshots = store
		}
	}
}

// WithEvents binds the notification sink.
func WithEvents(e ports.Events) Option {
	return func(s *Store) {
		if e != nil {
			s.events = e
		}
	}
}

// WithCheckout binds the order-placement orchestrator.
func WithCheckout(c ports.CheckoutOrchestrator) Option {
	return func(s *Store) { s.checkout = c }
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithToken records the session's bearer credential so order placement can
// hand it to a worker process.
func WithToken(token string) Option {
	return func(s *Store) { s.token = token }
}

// WithClock overrides time for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSyncTimeout bounds a single reconciliation attempt.
func WithSyncTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.syncTimeout = d
		}
	}
}

// NewStore builds a cart store for one user. Collaborators default to safe
// no-ops so a logged-out, persistence-less cart still works local-only.
func NewStore(userID string, opts ...Option) *Store {
	s := &Store{
		userID:      userID,
		gateway:     ports.NoopGateway,
		snapshots:   ports.NoopSnapshotStore,
		events:      ports.NoopEvents,
		logger:      slog.Default(),
		now:         time.Now,
		state:       domain.SyncClean,
		syncTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

var _ ports.Service = (*Store)(nil)

// Hydrate loads the persisted local cart, or adopts the remote cart when no
// local copy exists. Failures fall back to an empty cart; the cart must be
// usable before either collaborator is reachable.
func (s *Store) Hydrate(ctx context.Context) {
	s.hydrate.Do(func() { s.hydrateOnce(ctx) })
}

func (s *Store) hydrateOnce(ctx context.Context) {
	cart, err := s.snapshots.Load(ctx, s.userID)
	if err == nil && cart != nil {
		s.mu.Lock()
		s.cart = *cart
		s.restoreSequenceLocked()
		// The persisted copy may hold mutations the remote never saw (the
		// process can die while syncError). Hydrate as dirty so an explicit
		// Sync pushes it; a no-op replace on an already-matching remote is
		// the cheap side of that trade.
		s.state = domain.SyncDirty
		s.mu.Unlock()
		return
	}
	if err != nil && !errors.Is(err, ports.ErrSnapshotMissing) {
		s.logger.Warn("cart snapshot load failed, starting fresh",
			slog.String("user", s.userID), slog.String("error", err.Error()))
	}
	remote, err := s.gateway.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, ports.ErrRemoteCartMissing) && !errors.Is(err, ports.ErrNotAuthenticated) {
			s.logger.Warn("remote cart fetch failed, starting fresh",
				slog.String("user", s.userID), slog.String("error", err.Error()))
		}
		return
	}
	s.mu.Lock()
	s.cart = *remote
	for i := range s.cart.Items {
		if s.cart.Items[i].ID == "" {
			s.cart.Items[i].ID = s.nextItemIDLocked()
		}
	}
	s.state = domain.SyncClean
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// Snapshot returns a read-only copy of the current state.
func (s *Store) Snapshot(_ context.Context) ports.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddItem merges or appends the candidate. A candidate from a different
// bakery leaves the cart untouched and parks a switch request instead;
// repeated cross-bakery attempts replace the parked candidate (last wins).
func (s *Store) AddItem(ctx context.Context, candidate domain.CartItem) (ports.AddOutcome, error) {
	candidate, err := s.normalizeCandidate(candidate)
	if err != nil {
		return ports.AddOutcome{}, mapError(err)
	}

	s.mu.Lock()
	if !s.cart.Accepts(candidate) {
		request := domain.SwitchRequest{
			Candidate:    candidate,
			FromBakeryID: s.cart.BakeryID,
			ToBakeryID:   candidate.BakeryID,
			RequestedAt:  s.now(),
		}
		s.pending = &request
		s.mu.Unlock()
		s.events.SwitchRequested(s.userID, request)
		return ports.AddOutcome{Status: ports.AddNeedsConfirmation, Switch: &request}, nil
	}
	candidate.ID = s.nextItemIDLocked()
	line, err := s.cart.Upsert(candidate)
	if err != nil {
		s.mu.Unlock()
		return ports.AddOutcome{}, mapError(err)
	}
	s.commitLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.CartChanged(s.userID, snap)
	return ports.AddOutcome{Status: ports.AddAccepted, Item: &line}, nil
}

// EditItem replaces an item's configuration and re-derives its unit price.
func (s *Store) EditItem(ctx context.Context, itemID string, cfg domain.ItemConfig) (domain.CartItem, error) {
	price, err := domain.QuoteCents(cfg)
	if err != nil {
		return domain.CartItem{}, mapError(err)
	}

	s.mu.Lock()
	line, err := s.cart.Replace(itemID, cfg, price)
	if err != nil {
		s.mu.Unlock()
		return domain.CartItem{}, mapError(err)
	}
	s.commitLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.CartChanged(s.userID, snap)
	return line, nil
}

// UpdateQuantity sets a line's quantity; zero or below removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int32) error {
	s.mu.Lock()
	_, err := s.cart.SetQuantity(itemID, quantity)
	if err != nil {
		s.mu.Unlock()
		return mapError(err)
	}
	s.commitLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.CartChanged(s.userID, snap)
	return nil
}

// RemoveItem drops a line; removing the last line clears the bakery binding.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	if err := s.cart.Remove(itemID); err != nil {
		s.mu.Unlock()
		return mapError(err)
	}
	s.commitLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.CartChanged(s.userID, snap)
	return nil
}

// ClearCart empties the cart. The reconciler represents emptiness remotely
// as absence, so this schedules a DELETE rather than a PUT of [].
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	s.cart.Clear()
	s.pending = nil
	s.commitLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.CartChanged(s.userID, snap)
	return nil
}

// ConfirmBakerySwitch commits the parked cross-bakery add: the previous
// bakery's items are discarded wholesale, the binding moves to the new
// bakery, and the candidate enters through the normal merge path.
func (s *Store) ConfirmBakerySwitch(ctx context.Context) (ports.AddOutcome, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return ports.AddOutcome{}, ports.ErrNoPendingSwitch
	}
	candidate := s.pending.Candidate
	s.pending = nil
	s.cart.Clear()
	if candidate.ID == "" {
		candidate.ID = s.nextItemIDLocked()
	}
	line, err := s.cart.Upsert(candidate)
	if err != nil {
		// Candidate was validated when parked; this is a programmer error.
		s.mu.Unlock()
		return ports.AddOutcome{}, fmt.Errorf("commit switch candidate: %w", err)
	}
	s.commitLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.CartChanged(s.userID, snap)
	return ports.AddOutcome{Status: ports.AddAccepted, Item: &line}, nil
}

// CancelBakerySwitch discards the parked candidate; the cart is exactly as
// it was before the cross-bakery attempt.
func (s *Store) CancelBakerySwitch(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return ports.ErrNoPendingSwitch
	}
	s.pending = nil
	return nil
}

// SetCheckoutMeta stashes opaque delivery/payment metadata that rides along
// in every gateway replace, unmodified.
func (s *Store) SetCheckoutMeta(ctx context.Context, meta json.RawMessage) error {
	s.mu.Lock()
	if len(meta) == 0 {
		s.cart.CheckoutMeta = nil
	} else {
		s.cart.CheckoutMeta = append(json.RawMessage(nil), meta...)
	}
	s.commitLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.events.CartChanged(s.userID, snap)
	return nil
}

// CompleteOrder retires the cart after successful order placement: remote
// representation deleted, local state cleared unconditionally, regardless of
// prior sync state. The returned error reports remote retirement trouble;
// the local cart is empty either way.
func (s *Store) CompleteOrder(ctx context.Context) error {
	s.waitIdle(ctx)

	var err error
	if s.checkout != nil {
		err = s.checkout.PlaceOrder(ctx, ports.OrderPlacement{UserID: s.userID, Token: s.token})
	} else {
		err = s.gateway.Delete(ctx)
		if errors.Is(err, ports.ErrRemoteCartMissing) || errors.Is(err, ports.ErrNotAuthenticated) {
			err = nil
		}
	}

	s.mu.Lock()
	s.cart.Clear()
	s.cart.CheckoutMeta = nil
	s.pending = nil
	s.version++ // invalidate any still-running reconciliation attempt
	s.state = domain.SyncClean
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if eraseErr := s.snapshots.Erase(ctx, s.userID); eraseErr != nil {
		s.logger.Warn("cart snapshot erase failed after order",
			slog.String("user", s.userID), slog.String("error", eraseErr.Error()))
	}
	s.events.CartChanged(s.userID, snap)
	return err
}

// TearDown erases the persisted local copy on logout. The remote cart is
// left alone; it belongs to the account, not the device.
func (s *Store) TearDown(ctx context.Context) error {
	s.mu.Lock()
	s.cart = domain.Cart{}
	s.pending = nil
	s.version++
	s.state = domain.SyncClean
	s.mu.Unlock()
	return s.snapshots.Erase(ctx, s.userID)
}

func (s *Store) normalizeCandidate(candidate domain.CartItem) (domain.CartItem, error) {
	if err := candidate.Ref.Validate(); err != nil {
		return domain.CartItem{}, err
	}
	if candidate.BakeryID == "" {
		return domain.CartItem{}, domain.ErrMissingBakery
	}
	if candidate.Quantity < 1 {
		candidate.Quantity = 1
	}
	if candidate.Quantity > domain.MaxQuantity {
		candidate.Quantity = domain.MaxQuantity
	}
	if err := candidate.Config.Validate(); err != nil {
		return domain.CartItem{}, err
	}
	if candidate.UnitPriceCents == 0 {
		price, err := domain.QuoteCents(candidate.Config)
		if err != nil {
			return domain.CartItem{}, err
		}
		candidate.UnitPriceCents = price
	}
	if candidate.UnitPriceCents < 0 {
		return domain.CartItem{}, domain.ErrNegativePrice
	}
	return candidate, nil
}

// commitLocked persists the snapshot, marks the cart dirty, and schedules a
// reconciliation write. Snapshot failures are logged, never surfaced: local
// mutations must not fail on storage state.
func (s *Store) commitLocked(ctx context.Context) {
	s.persistLocked(ctx)
	s.state = domain.SyncDirty
	s.scheduleLocked()
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := s.snapshots.Save(ctx, s.userID, s.cart.Clone()); err != nil {
		s.logger.Warn("cart snapshot save failed",
			slog.String("user", s.userID), slog.String("error", err.Error()))
	}
}

func (s *Store) snapshotLocked() ports.Snapshot {
	clone := s.cart.Clone()
	snap := ports.Snapshot{
		Items:        clone.Items,
		BakeryID:     clone.BakeryID,
		SyncState:    s.state,
		CheckoutMeta: clone.CheckoutMeta,
		TotalCents:   clone.TotalCents(),
	}
	if s.pending != nil {
		request := *s.pending
		snap.PendingSwitch = &request
	}
	return snap
}

// nextItemIDLocked generates ids unique within the session: a monotonic
// counter joined with the creation timestamp.
func (s *Store) nextItemIDLocked() string {
	s.seq++
	return fmt.Sprintf("ci-%d-%d", s.now().UnixMilli(), s.seq)
}

// restoreSequenceLocked bumps the counter past hydrated items so new ids
// cannot collide with persisted ones.
func (s *Store) restoreSequenceLocked() {
	s.seq += uint64(len(s.cart.Items))
}
