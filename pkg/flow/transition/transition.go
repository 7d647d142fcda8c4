package transition

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/heynickashwin-oss/viashift/pkg/flow/narrative"
	"github.com/heynickashwin-oss/viashift/pkg/observability"
	"github.com/heynickashwin-oss/viashift/pkg/timeline"
)

// ErrInvalidConfig indicates a configuration that cannot drive a forge
// sequence, such as a non-positive per-layer duration.
var ErrInvalidConfig = errors.New("invalid transition config")

// ============================================================================
// PHASES
// ============================================================================

// Phase is the stage of the forge sequence for the incoming diagram.
type Phase int

// Forge phases in strict order. A completed sequence returns to
// [PhaseIdle].
const (
	PhaseIdle Phase = iota
	PhaseAnticipation
	PhaseShifting
	PhaseRevealing
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnticipation:
		return "anticipation"
	case PhaseShifting:
		return "shifting"
	case PhaseRevealing:
		return "revealing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ExitPhase is the stage of the outgoing diagram's exit sub-sequence. It
// runs alongside the forge phases: freeze during anticipation, desaturate
// while the incoming diagram shifts in and forges, gone once the sequence
// completes.
type ExitPhase int

// Exit phases in strict order.
const (
	ExitNone ExitPhase = iota
	ExitFreeze
	ExitDesaturate
	ExitGone
)

// String returns the lower-case exit phase name.
func (e ExitPhase) String() string {
	switch e {
	case ExitNone:
		return "none"
	case ExitFreeze:
		return "freeze"
	case ExitDesaturate:
		return "desaturate"
	case ExitGone:
		return "gone"
	default:
		return fmt.Sprintf("exit(%d)", int(e))
	}
}

// ============================================================================
// CONFIGURATION
// ============================================================================

// Config holds the forge sequence durations. The whole sequence takes
// Anticipation + Shift + PerLayer*layerCount.
type Config struct {
	// Anticipation is the beat before anything moves: the outgoing
	// diagram freezes and dims in place, geometry untouched.
	Anticipation time.Duration

	// Shift is the window during which the diagrams trade places. The
	// displayed variant flips at the shifting→revealing boundary.
	Shift time.Duration

	// PerLayer is the cadence of the discrete forge: each layer of the
	// incoming diagram owns one window of this length.
	PerLayer time.Duration
}

// Validate returns ErrInvalidConfig if any duration cannot drive a
// sequence. PerLayer must be positive; the other durations may be zero
// to skip their beat entirely.
func (c Config) Validate() error {
	if c.PerLayer <= 0 {
		return fmt.Errorf("%w: per-layer duration must be positive, got %v", ErrInvalidConfig, c.PerLayer)
	}
	if c.Anticipation < 0 {
		return fmt.Errorf("%w: anticipation must be non-negative, got %v", ErrInvalidConfig, c.Anticipation)
	}
	if c.Shift < 0 {
		return fmt.Errorf("%w: shift must be non-negative, got %v", ErrInvalidConfig, c.Shift)
	}
	return nil
}

// DefaultConfig returns the stock forge timings.
func DefaultConfig() Config {
	return Config{
		Anticipation: 350 * time.Millisecond,
		Shift:        400 * time.Millisecond,
		PerLayer:     600 * time.Millisecond,
	}
}

// ============================================================================
// STATE
// ============================================================================

// State is one sampled frame of the forge sequence.
type State struct {
	// Phase is the forge stage of the incoming diagram.
	Phase Phase

	// Variant is the diagram the caller should display right now. It
	// flips from the origin to the target at the shifting→revealing
	// boundary and stays on the target after completion.
	Variant narrative.Variant

	// ForgeLayer is the highest layer index of the incoming diagram
	// that may be shown, -1 while no layer has forged in. Only nodes
	// and links whose layer is at most ForgeLayer are visible. After a
	// completed sequence it rests at the last layer index.
	ForgeLayer int

	// LayerReveal is the 0→1 reveal fraction of the links entering
	// layer ForgeLayer within its window. 1 once the sequence is done.
	LayerReveal float64

	// ExitPhase is the outgoing diagram's exit stage.
	ExitPhase ExitPhase

	// RevealedMetrics counts summary metrics flagged visible so far;
	// each forged layer reveals one more, capped at the metric count.
	RevealedMetrics int
}

// ============================================================================
// CONTROLLER
// ============================================================================

// Controller drives forge sequences. The zero value is not usable; call
// [New]. All methods are safe for concurrent use.
type Controller struct {
	cfg   Config
	sched timeline.Scheduler

	mu          sync.Mutex
	active      bool
	done        bool
	target      narrative.Variant
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

// Trigger starts a forge sequence toward target at now. layerCount and
// metricCount describe the incoming diagram. Triggering while a sequence
// is in flight supersedes it: the superseded run's scheduled
// notifications are invalidated, so exactly one forge sequence is active
// at any time.
func (c *Controller) Trigger(target narrative.Variant, layerCount, metricCount int, now time.Time) {
	c.mu.Lock()
	c.active = true
	c.done = false
	c.target = target
	c.layerCount = layerCount
	c.metricCount = metricCount
	c.startedAt = now
	cfg := c.cfg
	c.mu.Unlock()

	c.sched.Invalidate()
	total := cfg.Anticipation + cfg.Shift + cfg.PerLayer*time.Duration(layerCount)
	c.sched.Schedule(total, func() {
		observability.Animation().OnTransitionComplete(string(target))
	})
}

// Cancel abandons the in-flight sequence and returns to idle. No
// notification scheduled by the cancelled sequence will fire afterwards.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.active = false
	c.done = false
	c.mu.Unlock()
	c.sched.Invalidate()
}

// Active reports whether a sequence is in flight or has completed. It
// turns false only on [Controller.Cancel].
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Sample returns the forge state at now. It is a pure function of the
// elapsed wall-clock time since the trigger; sampling cadence does not
// change what is shown when.
func (c *Controller) Sample(now time.Time) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return State{Phase: PhaseIdle, ForgeLayer: -1}
	}

	elapsed := now.Sub(c.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	shiftEnd := c.cfg.Anticipation + c.cfg.Shift
	revealEnd := shiftEnd + c.cfg.PerLayer*time.Duration(c.layerCount)
	origin := c.target.Other()

	switch {
	case elapsed >= revealEnd:
		last := c.layerCount - 1
		if last < 0 {
			last = -1
		}
		return State{
			Phase:           PhaseIdle,
			Variant:         c.target,
			ForgeLayer:      last,
			LayerReveal:     1,
			ExitPhase:       ExitGone,
			RevealedMetrics: c.metricCount,
		}
	case elapsed >= shiftEnd:
		sinceReveal := elapsed - shiftEnd
		layer := int(sinceReveal / c.cfg.PerLayer)
		if layer > c.layerCount-1 {
			layer = c.layerCount - 1
		}
		reveal := float64(sinceReveal-c.cfg.PerLayer*time.Duration(layer)) / float64(c.cfg.PerLayer)
		revealed := layer + 1
		if revealed > c.metricCount {
			revealed = c.metricCount
		}
		return State{
			Phase:           PhaseRevealing,
			Variant:         c.target,
			ForgeLayer:      layer,
			LayerReveal:     narrative.EaseOutCubic(reveal),
			ExitPhase:       ExitDesaturate,
			RevealedMetrics: revealed,
		}
	case elapsed >= c.cfg.Anticipation:
		return State{
			Phase:      PhaseShifting,
			Variant:    origin,
			ForgeLayer: -1,
			ExitPhase:  ExitDesaturate,
		}
	default:
		return State{
			Phase:      PhaseAnticipation,
			Variant:    origin,
			ForgeLayer: -1,
			ExitPhase:  ExitFreeze,
		}
	}
}
