package narrative

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
	"github.com/heynickashwin-oss/viashift/pkg/observability"
	"github.com/heynickashwin-oss/viashift/pkg/timeline"
)

// ErrInvalidConfig is returned by [New] when the configuration contains
// negative or otherwise unusable durations. Unlike degraded diagram input,
// a bad config is a programmer error and fails loudly at construction.
var ErrInvalidConfig = errors.New("invalid narrative config")

// Phase is a stage of the narrative. Phases are strictly ordered; a run
// visits them exactly once each, in declaration order.
type Phase int

// Narrative phases.
const (
	PhaseIdle Phase = iota
	PhaseSetup
	PhaseBleed
	PhaseReady
	PhaseComplete
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSetup:
		return "setup"
	case PhaseBleed:
		return "bleed"
	case PhaseReady:
		return "ready"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Variant distinguishes the two diagrams a transition swaps between.
type Variant string

// Diagram variants.
const (
	VariantBefore Variant = "before"
	VariantAfter  Variant = "after"
)

// Other returns the opposite variant.
func (v Variant) Other() Variant {
	if v == VariantAfter {
		return VariantBefore
	}
	return VariantAfter
}

// Config holds the per-phase durations of one narrative run.
type Config struct {
	// LayerDraw is how long one layer takes to draw from 0 to 1.
	LayerDraw time.Duration
	// LayerStagger is the delay between consecutive layer starts. A stagger
	// below LayerDraw overlaps the windows into a continuous wave; the
	// default starts each layer when its predecessor is 85% complete.
	LayerStagger time.Duration
	// Bleed is the total duration of the loss-highlight phase.
	Bleed time.Duration
	// BleedPulseCycles is how many 0→1→0 pulses fit inside Bleed.
	BleedPulseCycles int
	// MetricRevealDelay staggers summary metrics once ready begins.
	MetricRevealDelay time.Duration
	// ReadyHold is the delay between entering ready and entering complete,
	// gating secondary effects that should only run once the scene settles.
	ReadyHold time.Duration
}

// DefaultConfig returns the timings used by the stock diagrams.
func DefaultConfig() Config {
	return Config{
		LayerDraw:         900 * time.Millisecond,
		LayerStagger:      765 * time.Millisecond, // 85% of LayerDraw
		Bleed:             2400 * time.Millisecond,
		BleedPulseCycles:  3,
		MetricRevealDelay: 250 * time.Millisecond,
		ReadyHold:         1200 * time.Millisecond,
	}
}

// Validate reports whether the config is usable.
func (c Config) Validate() error {
	switch {
	case c.LayerDraw <= 0:
		return fmt.Errorf("%w: LayerDraw must be positive, got %v", ErrInvalidConfig, c.LayerDraw)
	case c.LayerStagger < 0:
		return fmt.Errorf("%w: LayerStagger must not be negative, got %v", ErrInvalidConfig, c.LayerStagger)
	case c.Bleed < 0:
		return fmt.Errorf("%w: Bleed must not be negative, got %v", ErrInvalidConfig, c.Bleed)
	case c.BleedPulseCycles < 0:
		return fmt.Errorf("%w: BleedPulseCycles must not be negative, got %d", ErrInvalidConfig, c.BleedPulseCycles)
	case c.MetricRevealDelay < 0:
		return fmt.Errorf("%w: MetricRevealDelay must not be negative, got %v", ErrInvalidConfig, c.MetricRevealDelay)
	case c.ReadyHold < 0:
		return fmt.Errorf("%w: ReadyHold must not be negative, got %v", ErrInvalidConfig, c.ReadyHold)
	}
	return nil
}

// setupDuration is the total draw time for layerCount staggered windows.
func (c Config) setupDuration(layerCount int) time.Duration {
	if layerCount <= 0 {
		return 0
	}
	return c.LayerStagger*time.Duration(layerCount-1) + c.LayerDraw
}

// State is one sampled frame of the narrative.
type State struct {
	Phase Phase

	// LayerProgress holds one draw fraction in [0,1] per layer. Within a run
	// each entry is monotonically non-decreasing over time.
	LayerProgress []float64

	// LossHighlightActive is true while loss elements pulse (bleed phase).
	LossHighlightActive bool
	// LossPulseIntensity oscillates 0→1→0 once per bleed cycle.
	LossPulseIntensity float64

	// ButtonReady unlocks the caller-side call-to-action.
	ButtonReady bool
	// RevealedMetrics is how many summary metrics are currently visible.
	RevealedMetrics int
	// Complete is true once the scene has fully settled.
	Complete bool
}

// Controller is the narrative state machine. It is re-armed per
// (graph identity, variant) pair and sampled once per frame.
//
// All methods are safe for concurrent use, though the expected pattern is a
// single frame loop calling Sample and occasional Arm/Deactivate calls from
// the same goroutine.
type Controller struct {
	cfg   Config
	sched timeline.Scheduler

	mu          sync.Mutex
	active      bool
	identity    flow.Fingerprint
	variant     Variant
	layerCount  int
	metricCount int
	startedAt   time.Time
}

// New creates a controller, failing loudly on invalid configuration.
func New(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg}, nil
}

// Arm starts (or keeps) a narrative run for the given graph identity and
// variant.
//
// Arming with the identity and variant of the already-active run is a no-op:
// this is what makes a resize - which rebuilds a referentially new but
// content-identical graph - animation-stable. Any other identity cancels the
// current run, invalidates its scheduled callbacks, and starts a fresh run
// at now.
func (c *Controller) Arm(identity flow.Fingerprint, variant Variant, layerCount, metricCount int, now time.Time) {
	c.mu.Lock()
	if c.active && c.identity == identity && c.variant == variant {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.identity = identity
	c.variant = variant
	c.layerCount = layerCount
	c.metricCount = metricCount
	c.startedAt = now
	cfg := c.cfg
	c.mu.Unlock()

	c.sched.Invalidate()
	c.schedulePhaseHooks(identity, cfg, layerCount)
}

// Deactivate cancels the current run and returns to idle. No callback
// scheduled by the cancelled run will fire afterwards.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
	c.sched.Invalidate()
}

// Active reports whether a run is armed.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// schedulePhaseHooks emits phase-changed notifications at the phase
// boundaries of the new run. Delivery is guarded by the scheduler's
// generation token; sampled state never depends on it.
func (c *Controller) schedulePhaseHooks(identity flow.Fingerprint, cfg Config, layerCount int) {
	id := identity.Short()
	setupEnd := cfg.setupDuration(layerCount)
	bleedEnd := setupEnd + cfg.Bleed
	completeAt := bleedEnd + cfg.ReadyHold

	notify := func(phase Phase) func() {
		return func() { observability.Animation().OnPhaseChanged(id, phase.String()) }
	}
	c.sched.Schedule(0, notify(PhaseSetup))
	c.sched.Schedule(setupEnd, notify(PhaseBleed))
	c.sched.Schedule(bleedEnd, notify(PhaseReady))
	c.sched.Schedule(completeAt, notify(PhaseComplete))
}

// Sample returns the narrative state at now. It is a pure function of the
// elapsed wall-clock time since arming; calling it more or less often does
// not change what is shown when.
func (c *Controller) Sample(now time.Time) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return State{Phase: PhaseIdle}
	}

	elapsed := now.Sub(c.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	setupEnd := c.cfg.setupDuration(c.layerCount)
	bleedEnd := setupEnd + c.cfg.Bleed
	completeAt := bleedEnd + c.cfg.ReadyHold

	st := State{Phase: PhaseSetup}
	st.LayerProgress = make([]float64, c.layerCount)
	for i := range st.LayerProgress {
		st.LayerProgress[i] = c.layerProgress(elapsed, i)
	}

	switch {
	case elapsed >= completeAt:
		st.Phase = PhaseComplete
		st.Complete = true
	case elapsed >= bleedEnd:
		st.Phase = PhaseReady
	case elapsed >= setupEnd:
		st.Phase = PhaseBleed
		st.LossHighlightActive = true
		if c.cfg.Bleed > 0 {
			frac := float64(elapsed-setupEnd) / float64(c.cfg.Bleed)
			st.LossPulseIntensity = PulseIntensity(frac, c.cfg.BleedPulseCycles)
		}
	}

	if st.Phase >= PhaseReady {
		st.ButtonReady = true
		st.RevealedMetrics = revealedMetrics(elapsed-bleedEnd, c.cfg.MetricRevealDelay, c.metricCount)
	}
	return st
}

// layerProgress returns the eased draw fraction of layer i at elapsed.
// Layer i owns the window [i*stagger, i*stagger+draw]: zero before it,
// one after it, and an ease-out ramp inside it.
func (c *Controller) layerProgress(elapsed time.Duration, i int) float64 {
	start := c.cfg.LayerStagger * time.Duration(i)
	if elapsed <= start {
		return 0
	}
	frac := float64(elapsed-start) / float64(c.cfg.LayerDraw)
	return EaseOutCubic(frac)
}

// revealedMetrics staggers metric visibility by delay once ready begins.
func revealedMetrics(sinceReady, delay time.Duration, metricCount int) int {
	if metricCount <= 0 || sinceReady < 0 {
		return 0
	}
	if delay <= 0 {
		return metricCount
	}
	n := int(sinceReady/delay) + 1
	if n > metricCount {
		n = metricCount
	}
	return n
}
