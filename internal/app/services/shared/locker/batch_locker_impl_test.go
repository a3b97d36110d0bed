package locker

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"qlinme-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRedisRepository struct {
	mock.Mock
}

func (m *MockRedisRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	args := m.Called(ctx, key, value, exp)
	return args.Error(0)
}

func (m *MockRedisRepository) SetRaw(ctx context.Context, key string, value []byte, exp time.Duration) error {
	args := m.Called(ctx, key, value, exp)
	return args.Error(0)
}

func (m *MockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

func newTestLocker(repo *MockRedisRepository) *redisLocker {
	l := newRedisLocker(repo, zap.NewNop())
	l.newValue = func() string { return "lock-value" }
	return l
}

func TestRedisLocker_LockBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires and releases once", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("TrySetNX", ctx, "lock:batch:B1", "lock-value", 30*time.Second).Return(true, nil)
		repo.On("Get", ctx, "lock:batch:B1").Return(`"lock-value"`, nil).Once()
		repo.On("Delete", ctx, "lock:batch:B1").Return(nil).Once()

		release, err := newTestLocker(repo).LockBatch(ctx, "B1", 30*time.Second)
		require.NoError(t, err)

		assert.NoError(t, release(ctx))
		assert.NoError(t, release(ctx))
		repo.AssertExpectations(t)
	})

	t.Run("held by another writer", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("TrySetNX", ctx, "lock:batch:B1", "lock-value", time.Second).Return(false, nil)

		release, err := newTestLocker(repo).LockBatch(ctx, "B1", time.Second)
		assert.Nil(t, release)
		assert.Equal(t, http.StatusConflict, exceptions.StatusCodeOf(err))
	})

	t.Run("redis failure", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("TrySetNX", ctx, "lock:batch:B1", "lock-value", time.Second).Return(false, errors.New("down"))

		_, err := newTestLocker(repo).LockBatch(ctx, "B1", time.Second)
		assert.Error(t, err)
	})
}

func TestRedisLocker_Unlock(t *testing.T) {
	ctx := context.Background()

	t.Run("expired lock is a no-op", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("Get", ctx, "k").Return("", nil)

		assert.NoError(t, newTestLocker(repo).Unlock(ctx, "k", "lock-value"))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("lock owned by someone else is kept", func(t *testing.T) {
		repo := new(MockRedisRepository)
		repo.On("Get", ctx, "k").Return(`"other"`, nil)

		assert.Error(t, newTestLocker(repo).Unlock(ctx, "k", "lock-value"))
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
