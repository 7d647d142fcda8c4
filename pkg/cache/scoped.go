package cache

// ScopedKeyer wraps a Keyer with a prefix, giving callers isolated cache
// namespaces. Shared deployments use it to keep per-project entries from
// colliding in one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:acme:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key. A
// nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GeometryKey generates a prefixed geometry key.
func (k *ScopedKeyer) GeometryKey(fingerprint string, opts GeometryKeyOpts) string {
	return k.prefix + k.inner.GeometryKey(fingerprint, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(geometryHash, opts)
}
