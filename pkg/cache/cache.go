// Package cache stores rendered artifacts keyed by machine content.
//
// # Overview
//
// Converting a machine is cheap, rendering it to SVG is not, and the HTTP
// server sees the same documents repeatedly. [Cache] is the small key-value
// contract the pipeline uses to skip repeated work. Five backends implement
// it:
//
//   - [NullCache]: stores nothing (--no-cache)
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for server deployments
//   - [BoltCache]: single-file embedded database
//   - [MongoCache]: document store shared by several servers
//
// Keys come from a [Keyer], which derives them from the hash of the canonical
// machine document and the artifact format:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(cache.Hash(doc), "etf")
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is the default lifetime of a cached artifact. Artifacts are
// derived purely from machine content, so the TTL only bounds disk usage.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (false, nil error), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the backend.
	Close() error
}

// cacheEntry wraps cached data with metadata for backends without native
// expiry.
type cacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newEntry(data []byte, ttl time.Duration) cacheEntry {
	e := cacheEntry{Data: data}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	return e
}

func (e cacheEntry) expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}
