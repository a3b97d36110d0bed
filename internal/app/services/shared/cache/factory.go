package cache

import (
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// Backends lists what the configured driver may need.
type Backends struct {
	Storage    contracts.ObjectStorage
	Redis      contracts.RedisRepository
	MemorySize int
}

// NewTimedCache picks the realization named by driver. Unknown drivers and
// drivers whose backend is missing fall back to the in-process cache.
func NewTimedCache(driver, name string, ttl time.Duration, backends Backends, logger *zap.Logger, m *metrics.Metrics) contracts.TimedCache {
	switch {
	case driver == constvars.CacheDriverStorage && backends.Storage != nil:
		return NewStorageTimedCache(name, backends.Storage, ttl, logger, m)
	case driver == constvars.CacheDriverRedis && backends.Redis != nil:
		return NewRedisTimedCache(name, backends.Redis, ttl, logger, m)
	case driver != constvars.CacheDriverMemory:
		logger.Warn("unsupported cache driver, using memory",
			zap.String(constvars.LoggingCacheNameKey, name),
			zap.String("driver", driver),
		)
	}
	return NewMemoryTimedCache(name, backends.MemorySize, ttl, logger, m)
}
