// Package cache provides pluggable byte caches for layout geometry and
// rendered artifacts, keyed by content identity.
//
// A [Cache] stores opaque bytes under string keys with optional TTLs.
// A [Keyer] builds those keys from the inputs that determine the cached
// value: the graph fingerprint plus viewport for geometry, the geometry
// hash plus render options for artifacts. Backends: [FileCache] for CLI
// runs, [RedisCache] for shared deployments, [NullCache] to disable
// caching.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind. Geometry is cheap to recompute but hit
// constantly by watch mode; artifacts are the expensive end.
const (
	TTLGeometry = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque bytes under string keys.
type Cache interface {
	// Get retrieves the value for key. A miss is (nil, false, nil);
	// errors are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GeometryKeyOpts are the inputs, besides the graph itself, that change
// computed geometry.
type GeometryKeyOpts struct {
	Width  float64
	Height float64
}

// ArtifactKeyOpts are the inputs, besides the geometry, that change a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format  string
	Variant string
	Scale   float64
}

// Keyer builds cache keys. Implementations must be deterministic: the
// same inputs always produce the same key.
type Keyer interface {
	// GeometryKey keys a computed layout by the graph's content
	// fingerprint and the viewport it was laid out for.
	GeometryKey(fingerprint string, opts GeometryKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of the geometry
	// it was rendered from and the render options.
	ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes all option structs into the key so that any
// option change invalidates the entry.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GeometryKey generates a key for layout geometry caching.
func (k *DefaultKeyer) GeometryKey(fingerprint string, opts GeometryKeyOpts) string {
	return hashKey("geom", fingerprint, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", geometryHash, opts)
}
