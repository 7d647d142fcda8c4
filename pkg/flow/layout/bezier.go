package layout

import (
	"fmt"
	"math"
)

// Cubic is a cubic Bézier curve. Flow links use control points at 40% and
// 60% of the horizontal span with flat tangents at both endpoints, which
// produces the familiar Sankey S-curve.
type Cubic struct {
	P0 Point `json:"p0"`
	C1 Point `json:"c1"`
	C2 Point `json:"c2"`
	P1 Point `json:"p1"`
}

// flowCurve builds the link curve between two band midpoints.
func flowCurve(from, to Point) Cubic {
	dx := to.X - from.X
	return Cubic{
		P0: from,
		C1: Point{X: from.X + 0.4*dx, Y: from.Y},
		C2: Point{X: from.X + 0.6*dx, Y: to.Y},
		P1: to,
	}
}

// PointAt evaluates the curve at parameter t in [0,1].
func (c Cubic) PointAt(t float64) Point {
	u := 1 - t
	// Bernstein form: u³P0 + 3u²tC1 + 3ut²C2 + t³P1
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Point{
		X: b0*c.P0.X + b1*c.C1.X + b2*c.C2.X + b3*c.P1.X,
		Y: b0*c.P0.Y + b1*c.C1.Y + b2*c.C2.Y + b3*c.P1.Y,
	}
}

// lengthSamples is the number of chord segments used to approximate arc
// length. Flow curves are gentle, so a modest count is plenty for driving
// stroke-draw animation.
const lengthSamples = 32

// Length returns the approximate arc length of the curve.
func (c Cubic) Length() float64 {
	var total float64
	prev := c.P0
	for i := 1; i <= lengthSamples; i++ {
		p := c.PointAt(float64(i) / lengthSamples)
		total += math.Hypot(p.X-prev.X, p.Y-prev.Y)
		prev = p
	}
	return total
}

// SVGPath returns the curve as an SVG path description.
func (c Cubic) SVGPath() string {
	return fmt.Sprintf("M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f",
		c.P0.X, c.P0.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.P1.X, c.P1.Y)
}
