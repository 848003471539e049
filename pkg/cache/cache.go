// Package cache stores rendered plan artifacts and computed layouts.
//
// Backends share the [Cache] interface:
//   - [NullCache]: caching disabled
//   - [MemoryCache]: per-process map, for the API server without Redis and for tests
//   - [FileCache]: one file per entry, for the CLI
//   - [RedisCache]: shared across API instances
//
// Keys come from a [Keyer]. [DefaultKeyer] derives them from content hashes
// of the plan and render options; [ScopedKeyer] prefixes them per
// establishment so tenants never share entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "est:lycee-hugo:")
//	key := keyer.ArtifactKey(cache.Hash(planJSON), cache.ArtifactKeyOpts{Format: "pdf"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLArchive  = time.Hour
)

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
