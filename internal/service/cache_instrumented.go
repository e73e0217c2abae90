package service

import (
	"context"
	"time"
)

// instrumentedCache wraps a schedule cache with Prometheus observations.
type instrumentedCache struct {
	inner   scheduleCache
	metrics *MetricsService
}

// InstrumentCache decorates a cache with hit/miss and write latency
// metrics. Either argument may be nil, in which case the cache is
// returned untouched.
func InstrumentCache(inner scheduleCache, metrics *MetricsService) scheduleCache {
	if inner == nil || metrics == nil {
		return inner
	}
	return &instrumentedCache{inner: inner, metrics: metrics}
}

func (c *instrumentedCache) Get(ctx context.Context, key string, dest interface{}) error {
	start := time.Now()
	err := c.inner.Get(ctx, key, dest)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	return err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	c.metrics.ObserveCacheWrite(time.Since(start))
	return err
}

func (c *instrumentedCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return c.inner.DeleteByPattern(ctx, pattern)
}
