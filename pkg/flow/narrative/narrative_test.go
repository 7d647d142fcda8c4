package narrative

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
	"github.com/heynickashwin-oss/viashift/pkg/observability"
)

var base = time.Unix(1700000000, 0)

// testConfig uses round numbers so boundaries are easy to reason about:
// setup for 3 layers ends at 100+100+200 = 400ms, bleed at 1000ms,
// complete at 1500ms.
func testConfig() Config {
	return Config{
		LayerDraw:         200 * time.Millisecond,
		LayerStagger:      100 * time.Millisecond,
		Bleed:             600 * time.Millisecond,
		BleedPulseCycles:  3,
		MetricRevealDelay: 100 * time.Millisecond,
		ReadyHold:         500 * time.Millisecond,
	}
}

func armedController(t *testing.T, cfg Config, layers, metrics int) *Controller {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	c.Arm("graph-1", VariantBefore, layers, metrics, base)
	t.Cleanup(c.Deactivate)
	return c
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero layer draw", func(c *Config) { c.LayerDraw = 0 }},
		{"negative layer draw", func(c *Config) { c.LayerDraw = -time.Second }},
		{"negative stagger", func(c *Config) { c.LayerStagger = -time.Millisecond }},
		{"negative bleed", func(c *Config) { c.Bleed = -time.Second }},
		{"negative cycles", func(c *Config) { c.BleedPulseCycles = -1 }},
		{"negative metric delay", func(c *Config) { c.MetricRevealDelay = -time.Second }},
		{"negative ready hold", func(c *Config) { c.ReadyHold = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestIdleBeforeArm(t *testing.T) {
	c, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	st := c.Sample(base)
	if st.Phase != PhaseIdle {
		t.Errorf("Phase = %v, want idle", st.Phase)
	}
	if st.ButtonReady || st.Complete || st.LossHighlightActive {
		t.Error("idle state has derived flags set")
	}
}

func TestPhaseOrderStrict(t *testing.T) {
	c := armedController(t, testConfig(), 3, 2)

	// Sweep the run at 10ms resolution and record distinct phases in order.
	var seen []Phase
	for ms := 0; ms <= 1600; ms += 10 {
		p := c.Sample(base.Add(time.Duration(ms) * time.Millisecond)).Phase
		if len(seen) == 0 || seen[len(seen)-1] != p {
			seen = append(seen, p)
		}
	}

	want := []Phase{PhaseSetup, PhaseBleed, PhaseReady, PhaseComplete}
	if len(seen) != len(want) {
		t.Fatalf("phases = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("phases = %v, want %v", seen, want)
		}
	}
}

func TestLayerProgressMonotoneAndStaggered(t *testing.T) {
	c := armedController(t, testConfig(), 3, 0)

	prev := make([]float64, 3)
	for ms := 0; ms <= 600; ms += 5 {
		st := c.Sample(base.Add(time.Duration(ms) * time.Millisecond))
		for i, p := range st.LayerProgress {
			if p < prev[i]-1e-12 {
				t.Fatalf("layer %d regressed at %dms: %.4f < %.4f", i, ms, p, prev[i])
			}
			prev[i] = p
		}
	}

	// Layer 1 must not start before its stagger offset.
	st := c.Sample(base.Add(90 * time.Millisecond))
	if st.LayerProgress[1] != 0 {
		t.Errorf("layer 1 progress = %.3f before its window", st.LayerProgress[1])
	}
	// At the stagger boundary layer 0 is deep into its ease-out (controlled
	// overlap, not strict sequencing).
	st = c.Sample(base.Add(100 * time.Millisecond))
	if st.LayerProgress[0] < 0.8 {
		t.Errorf("layer 0 progress = %.3f at layer 1 start, want ≥ 0.8", st.LayerProgress[0])
	}
	// All layers finish by setup end.
	st = c.Sample(base.Add(400 * time.Millisecond))
	for i, p := range st.LayerProgress {
		if p != 1 {
			t.Errorf("layer %d progress = %.3f at setup end, want 1", i, p)
		}
	}
}

func TestBleedPulse(t *testing.T) {
	c := armedController(t, testConfig(), 3, 0)

	// Mid-bleed, mid-cycle: intensity near 1. Cycles are 200ms each; the
	// first peak is at 400+100 = 500ms.
	st := c.Sample(base.Add(500 * time.Millisecond))
	if st.Phase != PhaseBleed {
		t.Fatalf("Phase = %v, want bleed", st.Phase)
	}
	if !st.LossHighlightActive {
		t.Error("LossHighlightActive = false during bleed")
	}
	if math.Abs(st.LossPulseIntensity-1) > 1e-9 {
		t.Errorf("LossPulseIntensity = %.3f at peak, want 1", st.LossPulseIntensity)
	}

	// Cycle boundary: intensity returns to 0.
	st = c.Sample(base.Add(600 * time.Millisecond))
	if math.Abs(st.LossPulseIntensity) > 1e-9 {
		t.Errorf("LossPulseIntensity = %.3f at cycle boundary, want 0", st.LossPulseIntensity)
	}

	// Outside bleed the highlight is off.
	st = c.Sample(base.Add(1100 * time.Millisecond))
	if st.LossHighlightActive || st.LossPulseIntensity != 0 {
		t.Error("loss highlight leaked outside bleed")
	}
}

func TestReadyAndMetricReveal(t *testing.T) {
	c := armedController(t, testConfig(), 3, 3)

	st := c.Sample(base.Add(1000 * time.Millisecond))
	if st.Phase != PhaseReady || !st.ButtonReady {
		t.Fatalf("at ready start: phase=%v buttonReady=%v", st.Phase, st.ButtonReady)
	}
	if st.RevealedMetrics != 1 {
		t.Errorf("RevealedMetrics = %d at ready start, want 1", st.RevealedMetrics)
	}

	st = c.Sample(base.Add(1250 * time.Millisecond))
	if st.RevealedMetrics != 3 {
		t.Errorf("RevealedMetrics = %d after all delays, want 3", st.RevealedMetrics)
	}
}

func TestCompleteAfterReadyHold(t *testing.T) {
	c := armedController(t, testConfig(), 3, 1)

	st := c.Sample(base.Add(1499 * time.Millisecond))
	if st.Complete {
		t.Error("Complete before ReadyHold elapsed")
	}
	st = c.Sample(base.Add(1500 * time.Millisecond))
	if st.Phase != PhaseComplete || !st.Complete {
		t.Errorf("at 1500ms: phase=%v complete=%v", st.Phase, st.Complete)
	}
	// ButtonReady persists through complete.
	if !st.ButtonReady {
		t.Error("ButtonReady dropped in complete")
	}
}

func TestResizeDoesNotRestart(t *testing.T) {
	c := armedController(t, testConfig(), 3, 0)

	mid := base.Add(500 * time.Millisecond)
	before := c.Sample(mid)

	// A resize rebuilds a content-identical graph: same fingerprint, same
	// variant. Re-arming must keep the run.
	c.Arm("graph-1", VariantBefore, 3, 0, mid)
	after := c.Sample(mid)

	if after.Phase != before.Phase {
		t.Errorf("phase reset by re-arm: %v → %v", before.Phase, after.Phase)
	}
	for i := range before.LayerProgress {
		if after.LayerProgress[i] != before.LayerProgress[i] {
			t.Errorf("layer %d progress reset by re-arm", i)
		}
	}
}

func TestNewIdentityRestarts(t *testing.T) {
	c := armedController(t, testConfig(), 3, 0)

	mid := base.Add(500 * time.Millisecond) // mid-bleed
	if p := c.Sample(mid).Phase; p != PhaseBleed {
		t.Fatalf("precondition: phase = %v, want bleed", p)
	}

	c.Arm("graph-2", VariantAfter, 4, 0, mid)
	st := c.Sample(mid)
	if st.Phase != PhaseSetup {
		t.Errorf("phase after re-arm = %v, want setup of the new run", st.Phase)
	}
	if len(st.LayerProgress) != 4 {
		t.Errorf("LayerProgress has %d layers, want 4", len(st.LayerProgress))
	}
	for i, p := range st.LayerProgress {
		if i > 0 && p != 0 {
			t.Errorf("layer %d progress = %.3f immediately after re-arm, want 0", i, p)
		}
	}
}

func TestDeactivateReturnsToIdle(t *testing.T) {
	c := armedController(t, testConfig(), 3, 0)
	c.Deactivate()
	if st := c.Sample(base.Add(time.Hour)); st.Phase != PhaseIdle {
		t.Errorf("Phase = %v after Deactivate, want idle", st.Phase)
	}
	if c.Active() {
		t.Error("Active() = true after Deactivate")
	}
}

// phaseRecorder collects phase-changed hook deliveries.
type phaseRecorder struct {
	mu     sync.Mutex
	phases []string
}

func (r *phaseRecorder) OnPhaseChanged(_, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *phaseRecorder) OnTransitionComplete(string) {}

func (r *phaseRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.phases...)
}

func TestStalePhaseHooksDoNotFire(t *testing.T) {
	defer observability.Reset()
	rec := &phaseRecorder{}
	observability.SetAnimationHooks(rec)

	cfg := Config{
		LayerDraw:        20 * time.Millisecond,
		LayerStagger:     10 * time.Millisecond,
		Bleed:            30 * time.Millisecond,
		BleedPulseCycles: 1,
		ReadyHold:        30 * time.Millisecond,
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Arm and immediately supersede the run. The zero-delay setup
	// notification races Deactivate and may slip through, but no later
	// boundary of the cancelled run may fire.
	c.Arm(flow.Fingerprint("run-one"), VariantBefore, 2, 0, time.Now())
	c.Deactivate()
	time.Sleep(150 * time.Millisecond)

	stale := rec.snapshot()
	if len(stale) > 1 || (len(stale) == 1 && stale[0] != "setup") {
		t.Errorf("stale hooks fired: %v", stale)
	}

	c.Arm(flow.Fingerprint("run-two"), VariantBefore, 2, 0, time.Now())
	defer c.Deactivate()
	time.Sleep(200 * time.Millisecond)

	got := rec.snapshot()[len(stale):]
	want := []string{"setup", "bleed", "ready", "complete"}
	if len(got) != len(want) {
		t.Fatalf("hook phases = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hook phases = %v, want %v", got, want)
		}
	}
}
