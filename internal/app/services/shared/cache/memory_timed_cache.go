package cache

import (
	"context"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const defaultMemorySize = 1024

type memoryEntry struct {
	payload   []byte
	createdAt time.Time
}

// memoryTimedCache keeps encoded values so callers never share mutable
// state with the cache.
type memoryTimedCache struct {
	name    string
	ttl     time.Duration
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func NewMemoryTimedCache(name string, size int, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) contracts.TimedCache {
	return newMemoryTimedCache(name, size, ttl, logger, m)
}

func newMemoryTimedCache(name string, size int, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *memoryTimedCache {
	if size <= 0 {
		size = defaultMemorySize
	}
	// only fails on a non positive size
	entries, _ := lru.New[string, memoryEntry](size)
	return &memoryTimedCache{
		name:    name,
		ttl:     ttl,
		entries: entries,
		now:     time.Now,
		Log:     logger,
		Metrics: m,
	}
}

func (c *memoryTimedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	entry, ok := c.entries.Get(key)
	if ok && c.now().After(entry.createdAt.Add(c.ttl)) {
		c.entries.Remove(key)
		ok = false
	}
	if ok {
		if err := json.Unmarshal(entry.payload, dest); err != nil {
			c.Log.Warn("Invalidate cache",
				zap.String(constvars.LoggingCacheNameKey, c.name),
				zap.String(constvars.LoggingCacheKey, key),
				zap.Error(err),
			)
			c.entries.Remove(key)
			ok = false
		}
	}
	c.Metrics.ObserveCacheLookup(c.name, ok)
	return ok, nil
}

func (c *memoryTimedCache) Put(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return exceptions.ErrCacheEncode(err, key)
	}
	c.entries.Add(key, memoryEntry{payload: payload, createdAt: c.now()})
	return nil
}

func (c *memoryTimedCache) Remove(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}
