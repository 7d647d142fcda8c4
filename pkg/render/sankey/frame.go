package sankey

import (
	"github.com/heynickashwin-oss/viashift/pkg/flow/narrative"
	"github.com/heynickashwin-oss/viashift/pkg/flow/transition"
)

// Frame is one sampled animation state reduced to what the sinks need:
// a draw fraction per layer, the loss emphasis, and a whole-diagram dim
// for the outgoing side of a forge.
type Frame struct {
	// Draw holds the 0→1 draw fraction per layer. Nodes fade in with
	// their layer's fraction; links reveal along their path with their
	// target layer's fraction. Nil means fully drawn.
	Draw []float64 `json:"draw,omitempty"`

	// LossActive pulses loss-typed nodes and links with LossPulse.
	LossActive bool    `json:"loss_active,omitempty"`
	LossPulse  float64 `json:"loss_pulse,omitempty"`

	// Dim scales the whole diagram's opacity, 1 = fully visible. The
	// forge exit sequence uses it for freeze and desaturate.
	Dim float64 `json:"dim"`
}

// FullFrame is the static, fully-drawn frame.
func FullFrame() Frame {
	return Frame{Dim: 1}
}

// NarrativeFrame reduces a sampled narrative state to a frame.
func NarrativeFrame(st narrative.State) Frame {
	return Frame{
		Draw:       st.LayerProgress,
		LossActive: st.LossHighlightActive,
		LossPulse:  st.LossPulseIntensity,
		Dim:        1,
	}
}

// ForgeFrame reduces a sampled transition state to a frame for the
// incoming diagram: layers at or below the forge layer are drawn, the
// current layer partially.
func ForgeFrame(st transition.State, layerCount int) Frame {
	draw := make([]float64, layerCount)
	for i := range draw {
		switch {
		case st.Phase == transition.PhaseIdle && st.ExitPhase == transition.ExitGone:
			draw[i] = 1 // completed forge
		case i < st.ForgeLayer:
			draw[i] = 1
		case i == st.ForgeLayer:
			draw[i] = st.LayerReveal
		}
	}
	return Frame{Draw: draw, Dim: 1}
}

// ExitFrame builds the frame for the outgoing diagram of a forge.
func ExitFrame(st transition.State) Frame {
	dim := 1.0
	switch st.ExitPhase {
	case transition.ExitFreeze:
		dim = 0.75
	case transition.ExitDesaturate:
		dim = 0.4
	case transition.ExitGone:
		dim = 0
	}
	return Frame{Dim: dim}
}

// layerDraw returns the draw fraction of layer i.
func (f Frame) layerDraw(i int) float64 {
	if f.Draw == nil {
		return 1
	}
	if i < 0 || i >= len(f.Draw) {
		return 0
	}
	return f.Draw[i]
}

// lossAlpha returns the opacity multiplier for loss elements, pulsing
// between baseline and full when the bleed highlight is active.
func (f Frame) lossAlpha() float64 {
	if !f.LossActive {
		return 1
	}
	return 0.55 + 0.45*f.LossPulse
}
