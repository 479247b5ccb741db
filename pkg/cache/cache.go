// Package cache stores simplification results, rendered artifacts and
// simulation outputs between runs.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON entry per key under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so that every input that changes a result
// changes its key. [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Default lifetimes per entry kind.
const (
	TTLSimplify   = 7 * 24 * time.Hour
	TTLRender     = 7 * 24 * time.Hour
	TTLSimulation = 24 * time.Hour
)
