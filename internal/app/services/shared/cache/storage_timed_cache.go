package cache

import (
	"context"
	"io"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// storageTimedCache stores entries as objects under .cache/. The object last
// modified date is the entry version, so entries survive restarts and are
// shared by every instance.
type storageTimedCache struct {
	name    string
	ttl     time.Duration
	Storage contracts.ObjectStorage
	now     func() time.Time
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func NewStorageTimedCache(name string, objectStorage contracts.ObjectStorage, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) contracts.TimedCache {
	return &storageTimedCache{
		name:    name,
		ttl:     ttl,
		Storage: objectStorage,
		now:     time.Now,
		Log:     logger,
		Metrics: m,
	}
}

func cacheObjectKey(key string) string {
	return constvars.StorageCachePrefix + key
}

func (c *storageTimedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	hit, err := c.get(ctx, key, dest)
	if err != nil {
		return false, err
	}
	c.Metrics.ObserveCacheLookup(c.name, hit)
	return hit, nil
}

func (c *storageTimedCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	objectKey := cacheObjectKey(key)

	info, err := c.Storage.Stat(ctx, objectKey)
	if exceptions.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, exceptions.ErrCacheGet(err, key)
	}
	if c.now().After(info.LastModified.Add(c.ttl)) {
		return false, nil
	}

	body, err := c.Storage.Get(ctx, objectKey)
	if exceptions.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, exceptions.ErrCacheGet(err, key)
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err == nil {
		err = json.Unmarshal(content, dest)
	}
	if err != nil {
		c.Log.Warn("Invalidate cache",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingCacheNameKey, c.name),
			zap.String(constvars.LoggingCacheKey, key),
			zap.Error(err),
		)
		if removeErr := c.Storage.Delete(ctx, objectKey); removeErr != nil {
			return false, exceptions.ErrCacheRemove(removeErr, key)
		}
		return false, nil
	}
	return true, nil
}

func (c *storageTimedCache) Put(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return exceptions.ErrCacheEncode(err, key)
	}
	if err := c.Storage.Put(ctx, cacheObjectKey(key), payload, constvars.MIMEApplicationJSON); err != nil {
		return exceptions.ErrCachePut(err, key)
	}
	return nil
}

func (c *storageTimedCache) Remove(ctx context.Context, key string) error {
	if err := c.Storage.Delete(ctx, cacheObjectKey(key)); err != nil {
		return exceptions.ErrCacheRemove(err, key)
	}
	return nil
}
