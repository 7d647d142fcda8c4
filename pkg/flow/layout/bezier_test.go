package layout

import (
	"math"
	"strings"
	"testing"
)

func TestFlowCurveEndpoints(t *testing.T) {
	c := flowCurve(Point{X: 100, Y: 50}, Point{X: 400, Y: 200})

	if c.P0 != (Point{X: 100, Y: 50}) {
		t.Errorf("P0 = %v", c.P0)
	}
	if c.P1 != (Point{X: 400, Y: 200}) {
		t.Errorf("P1 = %v", c.P1)
	}
	// Control points at 40%/60% of the horizontal span, tangent-flat.
	if c.C1 != (Point{X: 220, Y: 50}) {
		t.Errorf("C1 = %v, want {220 50}", c.C1)
	}
	if c.C2 != (Point{X: 280, Y: 200}) {
		t.Errorf("C2 = %v, want {280 200}", c.C2)
	}
}

func TestPointAtBounds(t *testing.T) {
	c := flowCurve(Point{X: 0, Y: 0}, Point{X: 100, Y: 80})

	if got := c.PointAt(0); got != c.P0 {
		t.Errorf("PointAt(0) = %v, want P0", got)
	}
	if got := c.PointAt(1); got != c.P1 {
		t.Errorf("PointAt(1) = %v, want P1", got)
	}
	mid := c.PointAt(0.5)
	if mid.X != 50 {
		t.Errorf("PointAt(0.5).X = %v, want 50 (symmetric control polygon)", mid.X)
	}
	if mid.Y != 40 {
		t.Errorf("PointAt(0.5).Y = %v, want 40", mid.Y)
	}
}

func TestLengthStraightLine(t *testing.T) {
	// A flat curve degenerates to a straight segment; arc length must match.
	c := flowCurve(Point{X: 0, Y: 10}, Point{X: 200, Y: 10})
	if got := c.Length(); math.Abs(got-200) > 1e-6 {
		t.Errorf("Length() = %v, want 200", got)
	}
}

func TestLengthExceedsChord(t *testing.T) {
	c := flowCurve(Point{X: 0, Y: 0}, Point{X: 100, Y: 100})
	chord := math.Hypot(100, 100)
	if got := c.Length(); got < chord {
		t.Errorf("Length() = %v, shorter than chord %v", got, chord)
	}
}

func TestSVGPath(t *testing.T) {
	c := flowCurve(Point{X: 0, Y: 0}, Point{X: 10, Y: 20})
	path := c.SVGPath()
	if !strings.HasPrefix(path, "M 0.00 0.00 C ") {
		t.Errorf("SVGPath() = %q", path)
	}
	if !strings.HasSuffix(path, "10.00 20.00") {
		t.Errorf("SVGPath() = %q", path)
	}
}
