// Package cache stores pipeline results between runs.
//
// The pipeline runner caches rendered artifacts, keyed by the hash of the
// graph they were drawn from and the render options. A changed document or
// option therefore misses naturally, and nothing has to be invalidated by
// hand. Building the graph itself is cheap and never cached.
//
// [FileCache] is the CLI's default backend. [RedisCache] shares artifacts
// between machines, and [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is the default lifetime of a cached artifact.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired and
	// unreadable entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
