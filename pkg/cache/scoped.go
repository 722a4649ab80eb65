package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// Useful when one cache backend serves several crawl corpora and each
// needs a separate namespace.
//
// Example usage:
//
//	// Corpus-specific keys
//	corpusKeyer := NewScopedKeyer(NewDefaultKeyer(), "corpus:2026-08:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for decoded graph caching.
func (k *ScopedKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(sourceHash, opts)
}

// RenderKey generates a prefixed key for rendered artifact caching.
func (k *ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, opts)
}
