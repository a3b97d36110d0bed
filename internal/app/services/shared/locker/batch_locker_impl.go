package locker

import (
	"context"
	"fmt"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	lockerInstance contracts.LockerService
	onceLocker     sync.Once
)

type redisLocker struct {
	redisRepo contracts.RedisRepository
	Log       *zap.Logger
	newValue  func() string
}

func NewLockerService(repo contracts.RedisRepository, logger *zap.Logger) contracts.LockerService {
	onceLocker.Do(func() {
		lockerInstance = newRedisLocker(repo, logger)
	})
	return lockerInstance
}

func newRedisLocker(repo contracts.RedisRepository, logger *zap.Logger) *redisLocker {
	return &redisLocker{
		redisRepo: repo,
		Log:       logger,
		newValue:  uuid.NewString,
	}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	requestID := utils.GetRequestID(ctx)

	lockValue := l.newValue()
	acquired, err := l.redisRepo.TrySetNX(ctx, key, lockValue, expiration)
	if err != nil {
		l.Log.Error("redisLocker.TryLock error calling redisRepo.TrySetNX",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return false, "", err
	}
	if !acquired {
		l.Log.Info("redisLocker.TryLock lock held elsewhere",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, key),
		)
		return false, "", nil
	}

	l.Log.Debug("redisLocker.TryLock acquired",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRedisKey, key),
		zap.String(constvars.LoggingLockValueKey, lockValue),
		zap.Duration(constvars.LoggingLockExpirationKey, expiration),
	)
	return true, lockValue, nil
}

// Unlock only deletes the key while it still carries our value. Values are
// stored json encoded, hence the quotes.
func (l *redisLocker) Unlock(ctx context.Context, key, lockValue string) error {
	requestID := utils.GetRequestID(ctx)

	storedValue, err := l.redisRepo.Get(ctx, key)
	if err != nil {
		l.Log.Error("redisLocker.Unlock error calling redisRepo.Get",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	if storedValue == "" {
		return nil
	}

	expected := fmt.Sprintf("%q", lockValue)
	if storedValue != expected {
		err := exceptions.ErrRedisUnlock(fmt.Errorf("lock %s not owned by this request", key))
		l.Log.Warn("redisLocker.Unlock ownership mismatch",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingLockStoredValueKey, storedValue),
			zap.String(constvars.LoggingLockExpectedKey, expected),
		)
		return err
	}

	return l.redisRepo.Delete(ctx, key)
}

func (l *redisLocker) LockBatch(ctx context.Context, batchID string, expiration time.Duration) (func(context.Context) error, error) {
	key := fmt.Sprintf(constvars.LockKeyBatchFormat, batchID)
	acquired, lockValue, err := l.TryLock(ctx, key, expiration)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrBatchLocked(nil, batchID)
	}

	var once sync.Once
	release := func(releaseCtx context.Context) error {
		var unlockErr error
		once.Do(func() {
			unlockErr = l.Unlock(releaseCtx, key, lockValue)
		})
		return unlockErr
	}
	return release, nil
}
