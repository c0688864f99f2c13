// Package cache stores rendered artifacts keyed by a hash of everything that
// determines their bytes.
//
// Only seeded renders are cacheable: an unseeded layout starts from random
// positions and produces different output each time. The pipeline computes
// keys with [Key] and consults the cache before rendering.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [MemoryCache]: bounded in-process LRU, used by the HTTP server
//   - [FileCache]: one file per entry, used by the CLI
//   - [RedisCache]: shared across server replicas
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with optional per-entry expiry. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// Key derives a cache key from a prefix and the JSON encoding of parts.
// The key format is prefix:sha256(parts).
func Key(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = fmt.Appendf(nil, "%v", parts)
	}
	return prefix + ":" + Hash(data)
}

// Hash computes the full SHA-256 hex digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
