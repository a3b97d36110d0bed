package cache

import (
	"context"
	"testing"
	"time"

	"qlinme-service/internal/app/services/shared/storage"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cachedAliquots struct {
	IDs []string `json:"ids"`
}

type clock struct{ current time.Time }

func (c *clock) now() time.Time { return c.current }

func TestMemoryTimedCache_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clk := &clock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newMemoryTimedCache(constvars.CacheNameVCF, 10, time.Hour, zap.NewNop(), nil)
	c.now = clk.now

	var got cachedAliquots
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit, "absent")

	require.NoError(t, c.Put(ctx, "k", cachedAliquots{IDs: []string{"1", "2"}}))
	hit, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit, "fresh")
	assert.Equal(t, []string{"1", "2"}, got.IDs)

	clk.current = clk.current.Add(2 * time.Hour)
	hit, _ = c.Get(ctx, "k", &got)
	assert.False(t, hit, "stale")
	assert.Equal(t, 0, c.entries.Len(), "stale entry evicted")
}

func TestMemoryTimedCache_DecodeFailureInvalidates(t *testing.T) {
	ctx := context.Background()
	c := newMemoryTimedCache(constvars.CacheNameVCF, 10, time.Hour, zap.NewNop(), nil)
	require.NoError(t, c.Put(ctx, "k", "a string"))

	var got cachedAliquots
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 0, c.entries.Len())
}

func TestStorageTimedCache_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clk := &clock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	objects := storage.NewMemoryStorage()
	objects.Now = clk.now
	c := NewStorageTimedCache(constvars.CacheNameVCF, objects, time.Hour, zap.NewNop(), nil).(*storageTimedCache)
	c.now = clk.now

	require.NoError(t, c.Put(ctx, "vcfs/B1/S1.vcf.gz.1000", cachedAliquots{IDs: []string{"1"}}))
	_, err := objects.Stat(ctx, ".cache/vcfs/B1/S1.vcf.gz.1000")
	require.NoError(t, err, "stored under the cache folder")

	var got cachedAliquots
	hit, err := c.Get(ctx, "vcfs/B1/S1.vcf.gz.1000", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"1"}, got.IDs)

	clk.current = clk.current.Add(61 * time.Minute)
	hit, err = c.Get(ctx, "vcfs/B1/S1.vcf.gz.1000", &got)
	require.NoError(t, err)
	assert.False(t, hit, "older than ttl")

	require.NoError(t, c.Put(ctx, "vcfs/B1/S1.vcf.gz.1000", cachedAliquots{IDs: []string{"2"}}))
	hit, _ = c.Get(ctx, "vcfs/B1/S1.vcf.gz.1000", &got)
	assert.True(t, hit, "put refreshes the version")
	assert.Equal(t, []string{"2"}, got.IDs)

	require.NoError(t, c.Remove(ctx, "vcfs/B1/S1.vcf.gz.1000"))
	hit, _ = c.Get(ctx, "vcfs/B1/S1.vcf.gz.1000", &got)
	assert.False(t, hit)
}

func TestStorageTimedCache_CorruptEntryIsDeleted(t *testing.T) {
	ctx := context.Background()
	objects := storage.NewMemoryStorage()
	require.NoError(t, objects.Put(ctx, ".cache/fhir.panels", []byte("{broken"), ""))
	c := NewStorageTimedCache(constvars.CacheNameReferenceData, objects, time.Hour, zap.NewNop(), nil)

	var got []string
	hit, err := c.Get(ctx, "fhir.panels", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = objects.Stat(ctx, ".cache/fhir.panels")
	assert.True(t, exceptions.IsNotFound(err))
}

type MockRedisRepository struct {
	mock.Mock
}

func (m *MockRedisRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}

func (m *MockRedisRepository) SetRaw(ctx context.Context, key string, value []byte, exp time.Duration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}

func (m *MockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

func TestRedisTimedCache_PutThenGet(t *testing.T) {
	ctx := context.Background()
	clk := &clock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	repo := new(MockRedisRepository)
	c := NewRedisTimedCache(constvars.CacheNameReferenceData, repo, time.Hour, zap.NewNop(), nil).(*redisTimedCache)
	c.now = clk.now

	var stored []byte
	repo.On("SetRaw", ctx, "qlinme:cache:fhir.panels", mock.Anything, time.Hour).
		Run(func(args mock.Arguments) { stored = args.Get(2).([]byte) }).
		Return(nil)
	require.NoError(t, c.Put(ctx, "fhir.panels", []string{"MMG", "RHAB"}))

	repo.On("Get", ctx, "qlinme:cache:fhir.panels").Return(string(stored), nil)
	var got []string
	hit, err := c.Get(ctx, "fhir.panels", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"MMG", "RHAB"}, got)
}

func TestRedisTimedCache_ExpiredOrCorrupt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		value string
	}{
		{name: "expired envelope", value: `{"data":["MMG"],"cached_at":"2020-01-01T00:00:00Z","expires_at":"2020-01-01T01:00:00Z"}`},
		{name: "corrupt envelope", value: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRedisRepository)
			repo.On("Get", ctx, "qlinme:cache:k").Return(tt.value, nil)
			repo.On("Delete", ctx, "qlinme:cache:k").Return(nil).Once()
			c := NewRedisTimedCache("test", repo, time.Hour, zap.NewNop(), nil)

			var got []string
			hit, err := c.Get(ctx, "k", &got)
			require.NoError(t, err)
			assert.False(t, hit)
			repo.AssertExpectations(t)
		})
	}
}

func TestNewTimedCache_Driver(t *testing.T) {
	logger := zap.NewNop()
	objects := storage.NewMemoryStorage()

	assert.IsType(t, &storageTimedCache{}, NewTimedCache(constvars.CacheDriverStorage, "c", time.Hour, Backends{Storage: objects}, logger, nil))
	assert.IsType(t, &redisTimedCache{}, NewTimedCache(constvars.CacheDriverRedis, "c", time.Hour, Backends{Redis: new(MockRedisRepository)}, logger, nil))
	assert.IsType(t, &memoryTimedCache{}, NewTimedCache(constvars.CacheDriverRedis, "c", time.Hour, Backends{}, logger, nil))
	assert.IsType(t, &memoryTimedCache{}, NewTimedCache("unknown", "c", time.Hour, Backends{}, logger, nil))
}
