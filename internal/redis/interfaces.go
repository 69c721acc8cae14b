package redis

import (
	"context"
	"time"
)

// SessionStoreInterface defines the interface for in-flight checkout sessions.
type SessionStoreInterface interface {
	Put(ctx context.Context, session *CheckoutSession) error
	Get(ctx context.Context, txRef string) (*CheckoutSession, error)
	Delete(ctx context.Context, txRef string) error
}

// LockStoreInterface defines the interface for distributed commit locking.
type LockStoreInterface interface {
	AcquireTxRefLock(ctx context.Context, txRef string, ttl time.Duration) (bool, error)
	ReleaseTxRefLock(ctx context.Context, txRef string) error
}

// Ensure concrete types implement interfaces.
var (
	_ SessionStoreInterface = (*SessionStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
)
