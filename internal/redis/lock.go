package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireTxRefLock attempts to acquire the commit lock for a transaction
// reference, so that concurrent verification successes (callback page refresh
// racing a background poll) funnel into one commit attempt. The database's
// conditional write remains the authoritative guard; the lock just avoids
// doing the work twice. Returns true if the lock was acquired.
func (s *LockStore) AcquireTxRefLock(ctx context.Context, txRef string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:txref:%s", txRef)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseTxRefLock releases the commit lock for a transaction reference.
func (s *LockStore) ReleaseTxRefLock(ctx context.Context, txRef string) error {
	key := fmt.Sprintf("lock:txref:%s", txRef)

	return s.client.Del(ctx, key).Err()
}
