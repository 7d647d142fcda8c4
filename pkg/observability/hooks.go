// Package observability provides hooks for the engine's host-facing events.
//
// The engine itself stays free of logging and UI concerns; instead it emits
// a small set of events that hosts can subscribe to at startup:
//
//   - layout ready: fired once per geometry recomputation, with node
//     positions keyed by ID, for external overlays such as hover cards
//   - phase changed: fired when the narrative controller enters a new phase
//   - transition complete: fired when a before→after forge finishes
//   - cache events: hits, misses, and writes from the geometry cache
//
// The package uses a simple hooks pattern: interfaces per event category,
// no-op defaults, and a global registry populated by main. Libraries never
// depend on a concrete observability backend.
//
// # Usage
//
//	func main() {
//	    observability.SetAnimationHooks(&myHooks{})
//	    // ... run application
//	}
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout engine's callers.
type LayoutHooks interface {
	// OnLayoutReady fires once per geometry recomputation. Positions are
	// node top-left coordinates keyed by node ID; x/y pairs are flattened to
	// avoid a dependency on the layout package's types.
	OnLayoutReady(graphID string, positions map[string][2]float64, duration time.Duration)
}

// =============================================================================
// Animation Hooks
// =============================================================================

// AnimationHooks receives events from the narrative and transition
// controllers.
type AnimationHooks interface {
	// OnPhaseChanged fires when the narrative controller enters a new phase.
	OnPhaseChanged(graphID string, phase string)

	// OnTransitionComplete fires when a forge transition returns to idle.
	OnTransitionComplete(target string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(keyType string)
	OnCacheMiss(keyType string)
	OnCacheSet(keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutReady(string, map[string][2]float64, time.Duration) {}

// NoopAnimationHooks is a no-op implementation of AnimationHooks.
type NoopAnimationHooks struct{}

func (NoopAnimationHooks) OnPhaseChanged(string, string) {}
func (NoopAnimationHooks) OnTransitionComplete(string)   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(string)      {}
func (NoopCacheHooks) OnCacheMiss(string)     {}
func (NoopCacheHooks) OnCacheSet(string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks    LayoutHooks    = NoopLayoutHooks{}
	animationHooks AnimationHooks = NoopAnimationHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	hooksMu        sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// Call once at application startup before any layout computation.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetAnimationHooks registers custom animation hooks.
// Call once at application startup before arming any controller.
func SetAnimationHooks(h AnimationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		animationHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Animation returns the registered animation hooks.
func Animation() AnimationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return animationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	animationHooks = NoopAnimationHooks{}
	cacheHooks = NoopCacheHooks{}
}
