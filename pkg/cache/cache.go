// Package cache stores intermediate grids and rendered artifacts so that
// recipe runs can skip steps whose inputs have not changed.
//
// Three backends implement [Cache]:
//
//   - [FileCache] writes one file per entry under a directory, for the CLI.
//   - [RedisCache] stores entries in Redis, for the HTTP server.
//   - [NullCache] stores nothing, used when caching is disabled.
//
// Keys are produced by a [Keyer]. [DefaultKeyer] hashes every component of a
// key, so any change to an input grid or a step parameter produces a new key.
// [ScopedKeyer] adds a prefix for isolating namespaces that share a backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	// TTLStep is how long a transform step result stays cached.
	TTLStep = 7 * 24 * time.Hour

	// TTLRender is how long a rendered image stays cached.
	TTLRender = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with optional expiration.
//
// Get reports a miss with ok=false and a nil error. An error means the
// backend itself failed; callers treat that as a miss and carry on.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}
