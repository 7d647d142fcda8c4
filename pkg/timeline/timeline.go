// Package timeline provides a deferred-callback scheduler guarded by
// generation tokens.
//
// Animation runs schedule notification callbacks (phase entered, transition
// complete) against wall-clock delays. When a run is superseded - the graph
// changed, the controller was re-armed, a new transition was triggered - all
// previously scheduled callbacks must become no-ops, or a stale callback
// will mutate state that belongs to the newer run. Scattered timers with ad
// hoc cancellation are exactly the bug class this package exists to remove:
// every callback captures the generation current at schedule time and checks
// it again at fire time, so invalidation is a single atomic bump rather than
// a bookkeeping hunt.
//
// Sampled animation state never depends on callback delivery; the scheduler
// only drives side effects such as observability hooks.
package timeline

import (
	"sync"
	"time"
)

// Scheduler runs deferred callbacks tied to a generation token.
// The zero value is ready to use. All methods are safe for concurrent use.
type Scheduler struct {
	mu     sync.Mutex
	gen    uint64
	timers []*time.Timer
}

// Generation returns the current generation token.
func (s *Scheduler) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Schedule runs fn after d, unless the scheduler is invalidated first.
// A non-positive delay fires on a separate goroutine almost immediately but
// still honors invalidation.
func (s *Scheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	gen := s.gen
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		if !s.current(gen) {
			return
		}
		fn()
	})
	s.timers = append(s.timers, timer)
	s.mu.Unlock()
}

// Invalidate advances the generation, turning every pending callback into a
// no-op. Pending timers are also stopped so they release their resources
// early; stopping is an optimization, the generation check is the
// correctness mechanism.
func (s *Scheduler) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = s.timers[:0]
}

// current reports whether gen is still the live generation.
func (s *Scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}
