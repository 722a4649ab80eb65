// Package observability provides hooks for metrics, tracing, and logging.
//
// The package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about decode runs, cache
// operations, and archive writes.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDecodeHooks(&myDecodeHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Decoder().OnDecodeStart(ctx, size)
//	// ... decode ...
//	observability.Decoder().OnDecodeComplete(ctx, nodes, edges, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// DecodeHooks receives events from graph decoding.
type DecodeHooks interface {
	// OnDecodeStart records the start of a decode run with the source size.
	OnDecodeStart(ctx context.Context, sourceBytes int)

	// OnDecodeComplete records a finished decode run. err is nil on success.
	OnDecodeComplete(ctx context.Context, nodeCount, edgeCount int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ArchiveHooks receives events from the graph archive.
type ArchiveHooks interface {
	// OnArchivePut records a stored graph.
	OnArchivePut(ctx context.Context, id string, nodeCount, edgeCount int)

	// OnArchiveDelete records a removed graph.
	OnArchiveDelete(ctx context.Context, id string)
}

// NoopDecodeHooks is a no-op implementation of DecodeHooks.
type NoopDecodeHooks struct{}

func (NoopDecodeHooks) OnDecodeStart(context.Context, int)                               {}
func (NoopDecodeHooks) OnDecodeComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopArchiveHooks is a no-op implementation of ArchiveHooks.
type NoopArchiveHooks struct{}

func (NoopArchiveHooks) OnArchivePut(context.Context, string, int, int) {}
func (NoopArchiveHooks) OnArchiveDelete(context.Context, string)        {}

var (
	decodeHooks  DecodeHooks  = NoopDecodeHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	archiveHooks ArchiveHooks = NoopArchiveHooks{}
	hooksMu      sync.RWMutex
)

// SetDecodeHooks registers custom decode hooks.
// This should be called once at application startup before any decode runs.
func SetDecodeHooks(h DecodeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		decodeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetArchiveHooks registers custom archive hooks.
// This should be called once at application startup before any archive writes.
func SetArchiveHooks(h ArchiveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		archiveHooks = h
	}
}

// Decoder returns the registered decode hooks.
func Decoder() DecodeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return decodeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Archive returns the registered archive hooks.
func Archive() ArchiveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return archiveHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	decodeHooks = NoopDecodeHooks{}
	cacheHooks = NoopCacheHooks{}
	archiveHooks = NoopArchiveHooks{}
}
