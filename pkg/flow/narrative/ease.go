package narrative

import "math"

// EaseOutCubic maps t in [0,1] onto a decelerating curve. Layer draw uses it
// so strokes land softly instead of stopping dead.
func EaseOutCubic(t float64) float64 {
	t = clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}

// PulseIntensity maps a phase fraction and cycle count onto the 0→1→0
// oscillation of the bleed highlight. frac is the elapsed fraction of the
// whole bleed phase.
func PulseIntensity(frac float64, cycles int) float64 {
	if cycles <= 0 {
		return 0
	}
	frac = clamp01(frac)
	_, cyclePos := math.Modf(frac * float64(cycles))
	if frac == 1 {
		return 0
	}
	return math.Sin(math.Pi * cyclePos)
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
