// Package cache provides byte-oriented caches for registry responses.
//
// The sync engine itself never persists anything between runs; these
// backends sit underneath the npm client and are only enabled when the user
// asks for them (--cache=file or --cache=redis://...). The default is
// [NullCache].
//
// Backends:
//   - [NullCache]: never stores anything
//   - [FileCache]: one JSON file per key under a cache directory
//   - [RedisCache]: shared cache in Redis, useful on CI runners
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get returns the cached data and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
