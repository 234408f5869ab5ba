package cartlock

import (
	"context"
	"log"
	"log/slog"
	"time"
)

// CartChecker lets the manager self-heal: a lock whose cart is empty
// belongs to a crashed or abandoned checkout and can be reclaimed.
type CartChecker interface {
	IsEmpty(ctx context.Context, identity string) (bool, error)
}

type Manager struct {
	store      Store
	carts      CartChecker
	ttl        time.Duration
	sweepEvery time.Duration
}

func NewManager(store Store, carts CartChecker, ttl, sweepEvery time.Duration) *Manager {
	return &Manager{
		store:      store,
		carts:      carts,
		ttl:        ttl,
		sweepEvery: sweepEvery,
	}
}

// Lock acquires the buyer's cart lock. False means a checkout is
// already in progress; this is the sole exclusion mechanism, so the
// caller must surface that as a conflict rather than wait.
func (m *Manager) Lock(ctx context.Context, identity, transactionID string) bool {
	now := time.Now()
	ok, err := m.store.Acquire(ctx, &Lock{
		Identity:      identity,
		TransactionID: transactionID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
	})
	if err != nil {
		slog.Error("cartlock: acquire failed", "identity", identity, "error", err)
		return false
	}
	return ok
}

// UpdateTransactionID swaps the placeholder id for the gateway's real
// transaction id once it is known. Best effort: failures are logged,
// never raised.
func (m *Manager) UpdateTransactionID(ctx context.Context, identity, transactionID string) {
	lock, err := m.store.Get(ctx, identity)
	if err != nil || lock == nil {
		slog.Error("cartlock: update on missing lock", "identity", identity, "error", err)
		return
	}

	lock.TransactionID = transactionID
	if err := m.store.Put(ctx, lock); err != nil {
		slog.Error("cartlock: update failed", "identity", identity, "error", err)
	}
}

// Unlock is idempotent; removing a non-existent lock reports false
// without error.
func (m *Manager) Unlock(ctx context.Context, identity string) bool {
	ok, err := m.store.Delete(ctx, identity)
	if err != nil {
		slog.Error("cartlock: unlock failed", "identity", identity, "error", err)
		return false
	}
	return ok
}

// IsLockedSmart reports whether an active lock exists, first healing
// locks whose cart has gone empty (left behind by a crashed checkout).
func (m *Manager) IsLockedSmart(ctx context.Context, identity string) bool {
	lock, err := m.store.Get(ctx, identity)
	if err != nil {
		slog.Error("cartlock: get failed", "identity", identity, "error", err)
		return false
	}
	if lock == nil || lock.Expired(time.Now()) {
		return false
	}

	if m.carts != nil {
		empty, err := m.carts.IsEmpty(ctx, identity)
		if err == nil && empty {
			m.Unlock(ctx, identity)
			return false
		}
	}
	return true
}

// Sweep evicts expired locks and returns how many it removed.
func (m *Manager) Sweep(ctx context.Context) int {
	ids, err := m.store.Identities(ctx)
	if err != nil {
		slog.Error("cartlock: sweep listing failed", "error", err)
		return 0
	}

	removed := 0
	now := time.Now()
	for _, id := range ids {
		lock, err := m.store.Get(ctx, id)
		if err != nil || lock == nil {
			continue
		}
		if lock.Expired(now) {
			if ok, _ := m.store.Delete(ctx, id); ok {
				removed++
			}
		}
	}
	return removed
}

// Run sweeps expired locks on a fixed interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("cart lock sweeper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				log.Printf("cart lock sweeper evicted %d expired locks", n)
			}
		}
	}
}
