package insight

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cache defines the interface for insight caching.
// Implementations sit in front of the repository so the recommendation
// endpoint stays fast even while the model is being re-queried.
//
// The cache operates as part of a multi-tier strategy:
// - L1: Local in-memory cache for ultra-fast access
// - L2: Redis cache for distributed consistency
// - L3: Database as the source of truth
type Cache interface {
	// Get retrieves a cached insight by lead ID.
	// Returns nil, nil if the insight is not in cache (cache miss).
	// Returns nil, error if there was an error accessing the cache.
	Get(ctx context.Context, leadID uuid.UUID) (*Insight, error)

	// Set stores an insight in cache with the specified TTL.
	// If ttl is 0, implementation should use a default TTL.
	Set(ctx context.Context, ins *Insight, ttl time.Duration) error

	// Delete removes a cached insight by lead ID.
	Delete(ctx context.Context, leadID uuid.UUID) error

	// InvalidateAll removes all cached insights.
	InvalidateAll(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// CacheUpdateAction represents the type of cache update notification
type CacheUpdateAction string

const (
	// CacheUpdateActionUpdated indicates an insight was created or refreshed
	CacheUpdateActionUpdated CacheUpdateAction = "updated"
	// CacheUpdateActionDeleted indicates an insight was deleted
	CacheUpdateActionDeleted CacheUpdateAction = "deleted"
	// CacheUpdateActionInvalidateAll indicates all cached insights should be cleared
	CacheUpdateActionInvalidateAll CacheUpdateAction = "invalidate_all"
)

// CacheUpdateMessage represents a cache invalidation message
// sent via Pub/Sub to notify other instances of cache changes.
type CacheUpdateMessage struct {
	Action    CacheUpdateAction `json:"action"`
	LeadID    string            `json:"lead_id,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// CacheInvalidator publishes cache update notifications to other
// instances and subscribes to receive notifications from them.
type CacheInvalidator interface {
	// Publish sends a cache update notification to all subscribers.
	Publish(ctx context.Context, msg CacheUpdateMessage) error

	// Subscribe starts listening for cache update notifications.
	// The callback function is invoked for each received message.
	// This method blocks and should be called in a goroutine.
	Subscribe(ctx context.Context, callback func(msg CacheUpdateMessage)) error

	// Close releases any resources held by the invalidator.
	Close() error
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	L1Hits      int64   `json:"l1_hits"`
	L1Misses    int64   `json:"l1_misses"`
	L2Hits      int64   `json:"l2_hits"`
	L2Misses    int64   `json:"l2_misses"`
	TotalHits   int64   `json:"total_hits"`
	TotalMisses int64   `json:"total_misses"`
	HitRatio    float64 `json:"hit_ratio"`
}

// CacheConfig holds configuration for the insight cache
type CacheConfig struct {
	// TTL is the time-to-live for cached insights in L2 (default: 15m)
	TTL time.Duration
	// L1TTL is the time-to-live for L1 (local) cache entries (default: 60s)
	L1TTL time.Duration
	// PubSubChannel is the Redis Pub/Sub channel name (default: "insight:updates")
	PubSubChannel string
}

// DefaultCacheConfig returns the default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:           15 * time.Minute,
		L1TTL:         60 * time.Second,
		PubSubChannel: "insight:updates",
	}
}
