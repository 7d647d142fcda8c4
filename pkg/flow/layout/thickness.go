package layout

// band is an inclusive thickness range for link rendering.
type band struct {
	lo, hi float64
}

// thicknessBand derives the thickness bounds from layer density. The densest
// layer determines a narrower band so crowded columns still fit the
// viewport; sparse layouts get thicker, more prominent flows.
func thicknessBand(densest int, vpHeight float64) band {
	if densest < 1 {
		densest = 1
	}
	hi := usableHeightFrac * vpHeight / (float64(densest) * 1.6)
	hi = min(44.0, max(8.0, hi))
	lo := min(6.0, max(2.0, hi/7))
	return band{lo: lo, hi: hi}
}

// thickness maps a link value into the band. Values at or below zero clamp
// to the band floor so no flow is ever invisible, and maxValue 0 (a graph
// with only zero-value links) degrades to the floor as well.
func (b band) thickness(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return b.lo
	}
	frac := value / maxValue
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return b.lo + (b.hi-b.lo)*frac
}
