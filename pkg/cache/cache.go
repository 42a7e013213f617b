// Package cache stores layout engine output.
//
// Graphviz is deterministic for a given DOT input, so a layout can be reused
// whenever the same graph is laid out again with the same options. Keys are
// content hashes; values are opaque bytes.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several servers
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLLayout is the lifetime of a cached layout.
const TTLLayout = 7 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies engine output for a DOT input.
	LayoutKey(dot []byte) string
}

// DefaultKeyer hashes its inputs under fixed prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256(dot)>".
func (DefaultKeyer) LayoutKey(dot []byte) string {
	return "layout:" + Hash(dot)
}

// PrefixedKeyer namespaces another keyer, so several deployments can share
// one Redis.
type PrefixedKeyer struct {
	inner  Keyer
	prefix string
}

// NewPrefixedKeyer wraps inner. A nil inner uses the default keyer; an empty
// prefix returns inner unchanged.
func NewPrefixedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &PrefixedKeyer{inner: inner, prefix: prefix}
}

func (k *PrefixedKeyer) LayoutKey(dot []byte) string {
	return k.prefix + k.inner.LayoutKey(dot)
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
