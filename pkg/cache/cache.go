// Package cache provides caching for decoded page graphs and rendered
// artifacts. Decoding a large recording is expensive; callers hash the
// source document and reuse the serialized result across invocations.
//
// Backends:
//   - file: directory-based cache for CLI usage
//   - redis: shared cache for server deployments
//   - null: disabled caching for tests
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
// Values are opaque byte slices; callers handle serialization.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts captures the decode options that affect the cached result.
// Two decodes of the same document with different options must not share
// a cache entry.
type GraphKeyOpts struct {
	Lenient bool
}

// RenderKeyOpts captures the render options that affect the cached artifact.
type RenderKeyOpts struct {
	Format     string // "dot", "svg", "png"
	EdgeLabels bool
}

// Keyer generates cache keys for the cacheable artifact types.
type Keyer interface {
	// GraphKey generates a key for a decoded graph, from the SHA-256
	// hash of the source document.
	GraphKey(sourceHash string, opts GraphKeyOpts) string

	// RenderKey generates a key for a rendered artifact, from the hash
	// of the serialized graph it was rendered from.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a decoded graph.
func (k *DefaultKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return hashKey("graph", sourceHash, opts.Lenient)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts.Format, opts.EdgeLabels)
}
