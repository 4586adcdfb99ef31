package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nia/backend/internal/domain/insight"
)

// Constants for Redis cache configuration
const (
	defaultScanBatchSize = 100
)

// RedisInsightCache implements insight.Cache using Redis
type RedisInsightCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	config     insight.CacheConfig
	logger     *zap.Logger
}

// RedisInsightCacheOption is a functional option for configuring the cache
type RedisInsightCacheOption func(*RedisInsightCache)

// WithCacheConfig sets the cache configuration
func WithCacheConfig(config insight.CacheConfig) RedisInsightCacheOption {
	return func(c *RedisInsightCache) {
		c.config = config
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisInsightCacheOption {
	return func(c *RedisInsightCache) {
		c.logger = logger
	}
}

// NewRedisInsightCache creates a new Redis-based insight cache
func NewRedisInsightCache(cfg RedisConfig, opts ...RedisInsightCacheOption) (*RedisInsightCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisInsightCache{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		config:     insight.DefaultCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisInsightCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisInsightCacheWithClient(client *redis.Client, opts ...RedisInsightCacheOption) *RedisInsightCache {
	cache := &RedisInsightCache{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		config:     insight.DefaultCacheConfig(),
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// insightCacheKey generates the cache key for a lead's insight
func (c *RedisInsightCache) insightCacheKey(leadID uuid.UUID) string {
	return fmt.Sprintf("insight:lead:%s", leadID.String())
}

// Get retrieves a cached insight by lead ID
func (c *RedisInsightCache) Get(ctx context.Context, leadID uuid.UUID) (*insight.Insight, error) {
	cacheKey := c.insightCacheKey(leadID)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		// Cache miss
		c.logger.Debug("Cache miss for insight", zap.String("lead_id", leadID.String()))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get insight from cache",
			zap.String("lead_id", leadID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get insight from cache: %w", err)
	}

	var ins insight.Insight
	if err := json.Unmarshal(data, &ins); err != nil {
		c.logger.Error("Failed to unmarshal insight",
			zap.String("lead_id", leadID.String()),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, cacheKey)
		return nil, fmt.Errorf("failed to unmarshal insight: %w", err)
	}

	c.logger.Debug("Cache hit for insight", zap.String("lead_id", leadID.String()))
	return &ins, nil
}

// Set stores an insight in cache
func (c *RedisInsightCache) Set(ctx context.Context, ins *insight.Insight, ttl time.Duration) error {
	if ins == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.config.TTL
	}

	cacheKey := c.insightCacheKey(ins.LeadID)

	data, err := json.Marshal(ins)
	if err != nil {
		c.logger.Error("Failed to marshal insight",
			zap.String("lead_id", ins.LeadID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to marshal insight: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		c.logger.Error("Failed to set insight in cache",
			zap.String("lead_id", ins.LeadID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to set insight in cache: %w", err)
	}

	c.logger.Debug("Cached insight",
		zap.String("lead_id", ins.LeadID.String()),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a cached insight by lead ID
func (c *RedisInsightCache) Delete(ctx context.Context, leadID uuid.UUID) error {
	cacheKey := c.insightCacheKey(leadID)

	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.Error("Failed to delete insight from cache",
			zap.String("lead_id", leadID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to delete insight from cache: %w", err)
	}

	c.logger.Debug("Deleted insight from cache", zap.String("lead_id", leadID.String()))
	return nil
}

// InvalidateAll removes all cached insights
func (c *RedisInsightCache) InvalidateAll(ctx context.Context) error {
	// Use SCAN to find all insight keys to avoid blocking Redis with KEYS command
	var cursor uint64
	var deletedCount int64

	for {
		var keys []string
		var err error
		keys, cursor, err = c.client.Scan(ctx, cursor, "insight:lead:*", defaultScanBatchSize).Result()
		if err != nil {
			c.logger.Error("Failed to scan insight keys", zap.Error(err))
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.Error("Failed to delete insight keys", zap.Error(err))
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deletedCount += deleted
		}

		if cursor == 0 {
			break
		}
	}

	c.logger.Info("Invalidated all insight cache",
		zap.Int64("deleted_count", deletedCount))
	return nil
}

// Close releases any resources held by the cache
func (c *RedisInsightCache) Close() error {
	// Only close client if we own it
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisInsightCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisInsightCache implements insight.Cache
var _ insight.Cache = (*RedisInsightCache)(nil)
