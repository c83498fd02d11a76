package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

// Reconciliation propagates local cart state to the gateway without ever
// blocking a mutation. Writes are coalesced: at most one request is in
// flight, and while it flies at most one follow-up is queued; the follow-up
// reads the cart again at launch, so the last write always reflects a state
// at or after every mutation that preceded its scheduling. A monotonic
// version stamp attributes completions: a completion whose stamp no longer
// matches the latest scheduled version must not touch the sync state.

// scheduleLocked registers intent to write. Caller holds s.mu.
func (s *Store) scheduleLocked() {
	s.version++
	if s.inFlight {
		s.queued = true
		return
	}
	s.inFlight = true
	go s.flush(s.version)
}

func (s *Store) flush(version uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
	defer cancel()

	s.mu.Lock()
	snapshot := s.cart.Clone()
	remove := snapshot.Empty()
	// A flush that was superseded before it even launched owns no state; the
	// cart stays dirty until the current-version flush takes over.
	if version == s.version {
		s.state = domain.SyncSyncing
	}
	s.mu.Unlock()

	var err error
	if remove {
		// An empty cart is represented remotely by absence, not by an
		// empty resource.
		err = s.gateway.Delete(ctx)
		if errors.Is(err, ports.ErrRemoteCartMissing) {
			err = nil
		}
	} else {
		err = s.gateway.Replace(ctx, snapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if version == s.version {
		if err != nil {
			s.state = domain.SyncError
			s.logUnlessUnauthenticated(err)
		} else {
			s.state = domain.SyncClean
		}
	}
	// A stale completion (version moved on) owns no state; the queued
	// follow-up below will settle it.

	if s.queued && s.version > version {
		s.queued = false
		go s.flush(s.version)
		return
	}
	s.inFlight = false
	s.idle.Broadcast()
}

// Sync forces a reconciliation attempt and waits for the reconciler to go
// quiet. Idempotent: a clean, quiet cart returns immediately.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	if s.state == domain.SyncClean && !s.inFlight && !s.queued {
		s.mu.Unlock()
		return nil
	}
	if !s.inFlight {
		s.scheduleLocked()
	}
	s.mu.Unlock()

	s.waitIdle(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == domain.SyncError {
		return ErrSyncFailed
	}
	return nil
}

// waitIdle blocks until no reconciliation write is in flight or queued, or
// the context ends.
func (s *Store) waitIdle(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.idle.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	for (s.inFlight || s.queued) && ctx.Err() == nil {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

func (s *Store) logUnlessUnauthenticated(err error) {
	if errors.Is(err, ports.ErrNotAuthenticated) {
		// Local-only use; the unsynced state is visible via the snapshot.
		s.logger.Debug("cart operating local-only", slog.String("user", s.userID))
		return
	}
	s.logger.Warn("cart reconciliation failed, local state retained",
		slog.String("user", s.userID), slog.String("error", err.Error()))
}
