package cache

import (
	"context"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/exceptions"
	"qlinme-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type redisEnvelope struct {
	Data      json.RawMessage `json:"data"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// redisTimedCache relies on the redis expiry and also checks the envelope,
// so a clock skew never serves a stale entry.
type redisTimedCache struct {
	name      string
	ttl       time.Duration
	redisRepo contracts.RedisRepository
	now       func() time.Time
	Log       *zap.Logger
	Metrics   *metrics.Metrics
}

func NewRedisTimedCache(name string, repo contracts.RedisRepository, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) contracts.TimedCache {
	return &redisTimedCache{
		name:      name,
		ttl:       ttl,
		redisRepo: repo,
		now:       time.Now,
		Log:       logger,
		Metrics:   m,
	}
}

func redisCacheKey(key string) string {
	return constvars.RedisCacheKeyPrefix + key
}

func (c *redisTimedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	hit, err := c.get(ctx, key, dest)
	if err != nil {
		return false, err
	}
	c.Metrics.ObserveCacheLookup(c.name, hit)
	return hit, nil
}

func (c *redisTimedCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	redisKey := redisCacheKey(key)
	value, err := c.redisRepo.Get(ctx, redisKey)
	if err != nil {
		return false, exceptions.ErrCacheGet(err, key)
	}
	if value == "" {
		return false, nil
	}

	var envelope redisEnvelope
	err = json.Unmarshal([]byte(value), &envelope)
	if err == nil && c.now().After(envelope.ExpiresAt) {
		return false, c.Remove(ctx, key)
	}
	if err == nil {
		err = json.Unmarshal(envelope.Data, dest)
	}
	if err != nil {
		c.Log.Warn("Invalidate cache",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingCacheNameKey, c.name),
			zap.String(constvars.LoggingCacheKey, key),
			zap.Error(err),
		)
		return false, c.Remove(ctx, key)
	}
	return true, nil
}

func (c *redisTimedCache) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return exceptions.ErrCacheEncode(err, key)
	}
	now := c.now()
	payload, err := json.Marshal(redisEnvelope{Data: data, CachedAt: now, ExpiresAt: now.Add(c.ttl)})
	if err != nil {
		return exceptions.ErrCacheEncode(err, key)
	}
	if err := c.redisRepo.SetRaw(ctx, redisCacheKey(key), payload, c.ttl); err != nil {
		return exceptions.ErrCachePut(err, key)
	}
	return nil
}

func (c *redisTimedCache) Remove(ctx context.Context, key string) error {
	if err := c.redisRepo.Delete(ctx, redisCacheKey(key)); err != nil {
		return exceptions.ErrCacheRemove(err, key)
	}
	return nil
}
