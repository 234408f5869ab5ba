// Package cartlock provides per-buyer mutual exclusion for checkout.
// At most one active, non-expired lock exists per buyer identity. There
// is no queueing: contention fails fast and the second caller gets told
// a checkout is already in progress.
package cartlock

import (
	"context"
	"time"
)

// Lock marks one in-flight checkout attempt. The transaction id starts
// as a local placeholder and is swapped for the gateway's id once known.
type Lock struct {
	Identity      string    `json:"identity"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func (l *Lock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Store is the injected lock registry. The in-memory implementation
// serves single-instance deployments; the Redis one survives restarts
// and is shared across instances.
type Store interface {
	// Acquire atomically installs the lock unless an active one exists.
	// An expired lock is reclaimed in place.
	Acquire(ctx context.Context, lock *Lock) (bool, error)

	// Get returns the current lock or nil.
	Get(ctx context.Context, identity string) (*Lock, error)

	// Put replaces an existing lock in place, keeping its expiry.
	Put(ctx context.Context, lock *Lock) error

	// Delete removes the lock, reporting whether one existed.
	Delete(ctx context.Context, identity string) (bool, error)

	// Identities lists identities that currently hold a lock record.
	Identities(ctx context.Context) ([]string, error)
}
