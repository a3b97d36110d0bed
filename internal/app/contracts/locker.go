package contracts

import (
	"context"
	"time"
)

// LockerService serializes writers of one batch across service instances.
type LockerService interface {
	TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, lockValue string) error
	// LockBatch fails with a conflict error when another writer holds the
	// batch. The returned release func must be called once.
	LockBatch(ctx context.Context, batchID string, expiration time.Duration) (func(context.Context) error, error)
}
