package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/insight"
)

// TieredInsightCache implements a two-tier caching strategy
// L1: Local in-memory cache (fast, but local to instance)
// L2: Redis cache (slower, but shared across instances)
// This follows a read-through, write-around pattern with Pub/Sub invalidation
type TieredInsightCache struct {
	l1Cache     *InMemoryInsightCache
	l2Cache     *RedisInsightCache
	invalidator *RedisInsightCacheInvalidator
	config      insight.CacheConfig
	logger      *zap.Logger

	// Stats for monitoring
	l1Hits   int64
	l1Misses int64
	l2Hits   int64
	l2Misses int64
}

// TieredInsightCacheOption is a functional option for configuring the cache
type TieredInsightCacheOption func(*TieredInsightCache)

// WithTieredConfig sets the cache configuration
func WithTieredConfig(config insight.CacheConfig) TieredInsightCacheOption {
	return func(c *TieredInsightCache) {
		c.config = config
	}
}

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredInsightCacheOption {
	return func(c *TieredInsightCache) {
		c.logger = logger
	}
}

// NewTieredInsightCache creates a new tiered insight cache
func NewTieredInsightCache(
	l1Cache *InMemoryInsightCache,
	l2Cache *RedisInsightCache,
	invalidator *RedisInsightCacheInvalidator,
	opts ...TieredInsightCacheOption,
) *TieredInsightCache {
	cache := &TieredInsightCache{
		l1Cache:     l1Cache,
		l2Cache:     l2Cache,
		invalidator: invalidator,
		config:      insight.DefaultCacheConfig(),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// StartInvalidationSubscription starts listening for cache invalidation messages
// This should be called after creating the cache, typically in a goroutine
func (c *TieredInsightCache) StartInvalidationSubscription(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}

	return c.invalidator.Subscribe(ctx, func(msg insight.CacheUpdateMessage) {
		c.handleInvalidationMessage(msg)
	})
}

// handleInvalidationMessage processes cache invalidation messages
func (c *TieredInsightCache) handleInvalidationMessage(msg insight.CacheUpdateMessage) {
	ctx := context.Background()

	switch msg.Action {
	case insight.CacheUpdateActionUpdated, insight.CacheUpdateActionDeleted:
		leadID, err := uuid.Parse(msg.LeadID)
		if err != nil {
			c.logger.Error("Failed to parse lead ID in invalidation message",
				zap.String("lead_id", msg.LeadID),
				zap.Error(err))
			return
		}
		if err := c.l1Cache.Delete(ctx, leadID); err != nil {
			c.logger.Error("Failed to invalidate L1 cache for insight",
				zap.String("lead_id", msg.LeadID),
				zap.Error(err))
		}
		c.logger.Debug("Invalidated L1 cache for insight",
			zap.String("action", string(msg.Action)),
			zap.String("lead_id", msg.LeadID))

	case insight.CacheUpdateActionInvalidateAll:
		if err := c.l1Cache.InvalidateAll(ctx); err != nil {
			c.logger.Error("Failed to invalidate all L1 cache", zap.Error(err))
		}
		c.logger.Debug("Invalidated all L1 insight cache")

	default:
		c.logger.Warn("Unknown cache update action",
			zap.String("action", string(msg.Action)))
	}
}

// Get retrieves an insight, checking L1 first, then L2.
// L2 hits are promoted into L1 with the shorter L1 TTL.
func (c *TieredInsightCache) Get(ctx context.Context, leadID uuid.UUID) (*insight.Insight, error) {
	// Check L1 first
	ins, err := c.l1Cache.Get(ctx, leadID)
	if err == nil && ins != nil {
		atomic.AddInt64(&c.l1Hits, 1)
		return ins, nil
	}
	atomic.AddInt64(&c.l1Misses, 1)

	// Check L2
	ins, err = c.l2Cache.Get(ctx, leadID)
	if err != nil {
		atomic.AddInt64(&c.l2Misses, 1)
		return nil, err
	}
	if ins == nil {
		atomic.AddInt64(&c.l2Misses, 1)
		return nil, nil
	}
	atomic.AddInt64(&c.l2Hits, 1)

	// Promote to L1 with shorter TTL
	if setErr := c.l1Cache.Set(ctx, ins, c.config.L1TTL); setErr != nil {
		c.logger.Warn("Failed to promote insight to L1 cache",
			zap.String("lead_id", leadID.String()),
			zap.Error(setErr))
	}

	return ins, nil
}

// Set writes an insight to L2 and notifies other instances to drop
// their L1 copy (write-around for L1)
func (c *TieredInsightCache) Set(ctx context.Context, ins *insight.Insight, ttl time.Duration) error {
	if ins == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.TTL
	}

	if err := c.l2Cache.Set(ctx, ins, ttl); err != nil {
		return err
	}

	// Invalidate our own L1 copy so the next read picks up the new value
	if err := c.l1Cache.Delete(ctx, ins.LeadID); err != nil {
		c.logger.Warn("Failed to invalidate local L1 cache after set",
			zap.String("lead_id", ins.LeadID.String()),
			zap.Error(err))
	}

	// Tell other instances to drop their L1 copy
	if c.invalidator != nil {
		if err := c.invalidator.PublishInsightUpdate(ctx, ins.LeadID); err != nil {
			c.logger.Warn("Failed to publish insight cache invalidation",
				zap.String("lead_id", ins.LeadID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// Delete removes an insight from both tiers and notifies other instances
func (c *TieredInsightCache) Delete(ctx context.Context, leadID uuid.UUID) error {
	if err := c.l2Cache.Delete(ctx, leadID); err != nil {
		return err
	}

	if err := c.l1Cache.Delete(ctx, leadID); err != nil {
		c.logger.Warn("Failed to delete insight from L1 cache",
			zap.String("lead_id", leadID.String()),
			zap.Error(err))
	}

	if c.invalidator != nil {
		if err := c.invalidator.PublishInsightDelete(ctx, leadID); err != nil {
			c.logger.Warn("Failed to publish insight cache deletion",
				zap.String("lead_id", leadID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// InvalidateAll clears both tiers and notifies other instances
func (c *TieredInsightCache) InvalidateAll(ctx context.Context) error {
	if err := c.l2Cache.InvalidateAll(ctx); err != nil {
		return err
	}

	if err := c.l1Cache.InvalidateAll(ctx); err != nil {
		c.logger.Warn("Failed to invalidate L1 cache", zap.Error(err))
	}

	if c.invalidator != nil {
		if err := c.invalidator.PublishInvalidateAll(ctx); err != nil {
			c.logger.Warn("Failed to publish invalidate-all message", zap.Error(err))
		}
	}

	return nil
}

// Close releases resources held by all tiers
func (c *TieredInsightCache) Close() error {
	var firstErr error

	if c.invalidator != nil {
		if err := c.invalidator.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.l1Cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.l2Cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// GetCacheStats returns statistics about cache hits and misses
func (c *TieredInsightCache) GetCacheStats() insight.CacheStats {
	l1Hits := atomic.LoadInt64(&c.l1Hits)
	l1Misses := atomic.LoadInt64(&c.l1Misses)
	l2Hits := atomic.LoadInt64(&c.l2Hits)
	l2Misses := atomic.LoadInt64(&c.l2Misses)

	totalHits := l1Hits + l2Hits
	totalMisses := l2Misses // only L2 misses mean the value was truly absent

	var hitRatio float64
	if totalHits+totalMisses > 0 {
		hitRatio = float64(totalHits) / float64(totalHits+totalMisses)
	}

	return insight.CacheStats{
		L1Hits:      l1Hits,
		L1Misses:    l1Misses,
		L2Hits:      l2Hits,
		L2Misses:    l2Misses,
		TotalHits:   totalHits,
		TotalMisses: totalMisses,
		HitRatio:    hitRatio,
	}
}

// Ensure TieredInsightCache implements insight.Cache
var _ insight.Cache = (*TieredInsightCache)(nil)
