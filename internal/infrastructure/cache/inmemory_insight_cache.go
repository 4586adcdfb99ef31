package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/insight"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryInsightCache implements insight.Cache using in-memory storage.
// This is designed to be used as L1 cache in front of Redis.
type InMemoryInsightCache struct {
	insights sync.Map // map[string]*insightEntry
	config   insight.CacheConfig
	logger   *zap.Logger
	stopCh   chan struct{} // Channel to stop the cleanup goroutine
	stopped  int32         // Atomic flag to track if cache is stopped

	// Stats for monitoring
	hits   int64
	misses int64
}

// insightEntry wraps a cached insight with expiration time
type insightEntry struct {
	value     *insight.Insight
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *insightEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryInsightCacheOption is a functional option for configuring the cache
type InMemoryInsightCacheOption func(*InMemoryInsightCache)

// WithInMemoryConfig sets the cache configuration
func WithInMemoryConfig(config insight.CacheConfig) InMemoryInsightCacheOption {
	return func(c *InMemoryInsightCache) {
		c.config = config
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryInsightCacheOption {
	return func(c *InMemoryInsightCache) {
		c.logger = logger
	}
}

// NewInMemoryInsightCache creates a new in-memory insight cache
func NewInMemoryInsightCache(opts ...InMemoryInsightCacheOption) *InMemoryInsightCache {
	cache := &InMemoryInsightCache{
		config: insight.DefaultCacheConfig(),
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached insight by lead ID
func (c *InMemoryInsightCache) Get(ctx context.Context, leadID uuid.UUID) (*insight.Insight, error) {
	cacheKey := leadID.String()

	if value, ok := c.insights.Load(cacheKey); ok {
		entry := value.(*insightEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("L1 cache hit for insight", zap.String("lead_id", cacheKey))
			return entry.value, nil
		}
		// Expired, remove from cache
		c.insights.Delete(cacheKey)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("L1 cache miss for insight", zap.String("lead_id", cacheKey))
	return nil, nil
}

// Set stores an insight in cache
func (c *InMemoryInsightCache) Set(ctx context.Context, ins *insight.Insight, ttl time.Duration) error {
	if ins == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.L1TTL
	}

	entry := &insightEntry{
		value:     ins,
		expiresAt: time.Now().Add(ttl),
	}

	c.insights.Store(ins.LeadID.String(), entry)
	c.logger.Debug("Cached insight in L1",
		zap.String("lead_id", ins.LeadID.String()),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a cached insight by lead ID
func (c *InMemoryInsightCache) Delete(ctx context.Context, leadID uuid.UUID) error {
	c.insights.Delete(leadID.String())
	c.logger.Debug("Deleted insight from L1 cache", zap.String("lead_id", leadID.String()))
	return nil
}

// InvalidateAll removes all cached insights
func (c *InMemoryInsightCache) InvalidateAll(ctx context.Context) error {
	c.insights.Range(func(key, _ any) bool {
		c.insights.Delete(key)
		return true
	})

	c.logger.Info("Invalidated all L1 insight cache")
	return nil
}

// Close releases any resources held by the cache
func (c *InMemoryInsightCache) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryInsightCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// ResetStats resets the cache statistics
func (c *InMemoryInsightCache) ResetStats() {
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Count returns the number of entries in the cache
func (c *InMemoryInsightCache) Count() int {
	count := 0
	c.insights.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryInsightCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in cache cleanup",
							zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryInsightCache) doCleanup() {
	var removed int

	c.insights.Range(func(key, value any) bool {
		entry := value.(*insightEntry)
		if entry.isExpired() {
			c.insights.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired L1 cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryInsightCache implements insight.Cache
var _ insight.Cache = (*InMemoryInsightCache)(nil)
