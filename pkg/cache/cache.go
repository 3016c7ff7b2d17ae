// Package cache provides the route cache and its persisted storage backends.
//
// # Persisted Backends
//
// [Cache] is a byte key/value store with per-entry TTL. Implementations:
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [BadgerCache]: embedded badger database, optionally in-memory
//   - [RedisCache]: shared cache for several API servers
//   - [NullCache]: stores nothing
//
// # Route Cache
//
// [RouteCache] layers a bounded in-memory tier over a persisted [Cache].
// Lookups check the exact key in memory, then the reverse key in memory
// (returning the reversed path), then the persisted tier. Writes land in
// memory immediately; the persisted forward and reverse entries are written
// by a background writer so callers never wait on storage.
//
// Persisted keys have the shape
//
//	route-cache-<floor>-<url-encoded from>-<url-encoded to>
//
// and values are JSON objects {"nodes": [...], "timestamp": <unix ms>}.
package cache

import (
	"context"
	"time"
)

// Cache is a byte key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired key is reported as
	// (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by backends that can drop all entries at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
