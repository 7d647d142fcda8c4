package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
)

var testViewport = Viewport{Width: 1200, Height: 700}

// twoLayerGraph is the worked example from the design discussion: A feeds B
// with twice the flow it loses to C.
func twoLayerGraph(t *testing.T) *flow.Graph {
	t.Helper()
	g, dropped, err := flow.Build(
		[]flow.Node{
			{ID: "a", Layer: 0, Value: 150, Type: flow.NodeSource},
			{ID: "b", Layer: 1, Value: 100},
			{ID: "c", Layer: 1, Value: 50, Type: flow.NodeLoss},
		},
		[]flow.Link{
			{ID: "ab", From: "a", To: "b", Value: 100},
			{ID: "ac", From: "a", To: "c", Value: 50, Type: flow.LinkLoss},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 0 {
		t.Fatalf("dropped %d links", len(dropped))
	}
	return g
}

func TestComputeNotReady(t *testing.T) {
	g := twoLayerGraph(t)

	tests := []struct {
		name string
		g    *flow.Graph
		vp   Viewport
	}{
		{name: "nil graph", g: nil, vp: testViewport},
		{name: "empty graph", g: flow.New(), vp: testViewport},
		{name: "unmeasured viewport", g: g, vp: Viewport{}},
		{name: "below width floor", g: g, vp: Viewport{Width: MinViewportWidth - 1, Height: 700}},
		{name: "zero height", g: g, vp: Viewport{Width: 1200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if geo := Compute(tt.g, tt.vp); geo != nil {
				t.Error("Compute() != nil, want not-ready nil")
			}
		})
	}
}

func TestComputeExampleScenario(t *testing.T) {
	geo := Compute(twoLayerGraph(t), testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}
	if geo.LayerCount != 2 {
		t.Fatalf("LayerCount = %d, want 2", geo.LayerCount)
	}
	if len(geo.Nodes) != 3 || len(geo.Links) != 2 {
		t.Fatalf("got %d nodes / %d links, want 3 / 2", len(geo.Nodes), len(geo.Links))
	}

	var ab, ac LayoutLink
	for _, l := range geo.Links {
		switch l.ID {
		case "ab":
			ab = l
		case "ac":
			ac = l
		}
	}

	// thickness(A→B) : thickness(A→C) ≈ 2 : 1 within clamp bounds. The band
	// floor compresses the ratio, so allow generous bounds.
	ratio := ab.Thickness / ac.Thickness
	if ratio < 1.2 || ratio > 2.01 {
		t.Errorf("thickness ratio = %.2f, want within (1.2, 2.0]", ratio)
	}
	if ab.Thickness < ac.Thickness {
		t.Error("larger flow is thinner than smaller flow")
	}

	a, _ := geo.Node("a")
	if a.Height < ab.Thickness+ac.Thickness-1e-9 {
		t.Errorf("height(a) = %.2f < %.2f, violates no-overflow invariant",
			a.Height, ab.Thickness+ac.Thickness)
	}
}

func TestComputeNoOverflowInvariant(t *testing.T) {
	g := pipelineGraph(t)
	geo := Compute(g, testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}

	for _, n := range geo.Nodes {
		var in, out float64
		for _, l := range geo.Links {
			if l.To == n.ID {
				in += l.Thickness
			}
			if l.From == n.ID {
				out += l.Thickness
			}
		}
		if n.Height < in-1e-9 {
			t.Errorf("node %s: height %.2f < incoming %.2f", n.ID, n.Height, in)
		}
		if n.Height < out-1e-9 {
			t.Errorf("node %s: height %.2f < outgoing %.2f", n.ID, n.Height, out)
		}
	}
}

func TestComputeStableStacking(t *testing.T) {
	g := pipelineGraph(t)

	first := Compute(g, testViewport)
	second := Compute(g, testViewport)
	if first == nil || second == nil {
		t.Fatal("Compute() = nil")
	}

	order := func(geo *Geometry) []string {
		ids := make([]string, len(geo.Links))
		for i, l := range geo.Links {
			ids[i] = l.ID
		}
		return ids
	}
	if !reflect.DeepEqual(order(first), order(second)) {
		t.Errorf("stacking order differs across recomputation:\n%v\n%v", order(first), order(second))
	}
	for i := range first.Links {
		if first.Links[i].Path != second.Links[i].Path {
			t.Errorf("link %s path differs across recomputation", first.Links[i].ID)
		}
	}
}

func TestComputeThicknessMonotonic(t *testing.T) {
	geo := Compute(pipelineGraph(t), testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}
	for _, a := range geo.Links {
		for _, b := range geo.Links {
			if a.Value > b.Value && a.Thickness < b.Thickness-1e-9 {
				t.Errorf("link %s (value %.0f) thinner than %s (value %.0f)",
					a.ID, a.Value, b.ID, b.Value)
			}
		}
	}
}

func TestComputeZeroValueLinkStaysVisible(t *testing.T) {
	g, _, err := flow.Build(
		[]flow.Node{
			{ID: "a", Layer: 0, Value: 10},
			{ID: "b", Layer: 1, Value: 10},
			{ID: "c", Layer: 1, Value: 0},
		},
		[]flow.Link{
			{ID: "ab", From: "a", To: "b", Value: 10},
			{ID: "ac", From: "a", To: "c", Value: 0},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	geo := Compute(g, testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}
	for _, l := range geo.Links {
		if l.Thickness < thicknessFloor {
			t.Errorf("link %s thickness = %.2f, below visibility floor", l.ID, l.Thickness)
		}
	}
}

func TestComputeSingleLayerCenters(t *testing.T) {
	g, _, err := flow.Build(
		[]flow.Node{
			{ID: "only", Layer: 0, Value: 10},
		}, nil)
	if err != nil {
		t.Fatal(err)
	}
	geo := Compute(g, testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}
	n := geo.Nodes[0]
	wantX := (testViewport.Width - n.Width) / 2
	if math.Abs(n.X-wantX) > 1e-9 {
		t.Errorf("single layer X = %.1f, want centered at %.1f", n.X, wantX)
	}
}

func TestComputeYHintOrdersLayer(t *testing.T) {
	low, high := 0.9, 0.1
	g, _, err := flow.Build(
		[]flow.Node{
			{ID: "bottom", Layer: 0, Value: 10, YHint: &low},
			{ID: "top", Layer: 0, Value: 10, YHint: &high},
		}, nil)
	if err != nil {
		t.Fatal(err)
	}
	geo := Compute(g, testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}
	topNode, _ := geo.Node("top")
	bottomNode, _ := geo.Node("bottom")
	if topNode.Y >= bottomNode.Y {
		t.Errorf("yHint ordering ignored: top.Y=%.1f bottom.Y=%.1f", topNode.Y, bottomNode.Y)
	}
}

func TestComputePathAnchors(t *testing.T) {
	geo := Compute(twoLayerGraph(t), testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}
	for _, l := range geo.Links {
		if l.PathLen <= 0 {
			t.Errorf("link %s: PathLen = %.2f, want > 0", l.ID, l.PathLen)
		}
		src, _ := geo.Node(l.From)
		dst, _ := geo.Node(l.To)
		if l.Path.P0.X != src.Right() {
			t.Errorf("link %s starts at %.1f, want source right edge %.1f", l.ID, l.Path.P0.X, src.Right())
		}
		if l.Path.P1.X != dst.X {
			t.Errorf("link %s ends at %.1f, want target left edge %.1f", l.ID, l.Path.P1.X, dst.X)
		}
		// The near-target anchor must sit past the midpoint, toward the target.
		if !(l.NearTarget.X > l.Midpoint.X) {
			t.Errorf("link %s: NearTarget.X %.1f not past Midpoint.X %.1f", l.ID, l.NearTarget.X, l.Midpoint.X)
		}
	}
}

func TestComputeBandsDoNotOverlap(t *testing.T) {
	geo := Compute(pipelineGraph(t), testViewport)
	if geo == nil {
		t.Fatal("Compute() = nil")
	}

	// For every node edge, bands must be disjoint: consecutive links in
	// stacking order are separated by at least half of each thickness.
	type edge struct {
		node string
		out  bool
	}
	bands := make(map[edge][]LayoutLink)
	for _, l := range geo.Links {
		bands[edge{l.From, true}] = append(bands[edge{l.From, true}], l)
		bands[edge{l.To, false}] = append(bands[edge{l.To, false}], l)
	}
	for e, ls := range bands {
		for i := 0; i < len(ls); i++ {
			for j := i + 1; j < len(ls); j++ {
				yi, ti := bandY(ls[i], e.out), ls[i].Thickness
				yj, tj := bandY(ls[j], e.out), ls[j].Thickness
				if math.Abs(yi-yj) < (ti+tj)/2-1e-6 {
					t.Errorf("edge %v: bands of %s and %s overlap", e, ls[i].ID, ls[j].ID)
				}
			}
		}
	}
}

func bandY(l LayoutLink, out bool) float64 {
	if out {
		return l.Path.P0.Y
	}
	return l.Path.P1.Y
}

// pipelineGraph is a denser 4-layer graph exercising fan-out and fan-in.
func pipelineGraph(t *testing.T) *flow.Graph {
	t.Helper()
	g, dropped, err := flow.Build(
		[]flow.Node{
			{ID: "intake", Layer: 0, Value: 300, Type: flow.NodeSource},
			{ID: "triage", Layer: 1, Value: 200},
			{ID: "manual", Layer: 1, Value: 100},
			{ID: "resolve", Layer: 2, Value: 180},
			{ID: "churn", Layer: 2, Value: 80, Type: flow.NodeLoss},
			{ID: "rework", Layer: 2, Value: 40, Type: flow.NodeLoss},
			{ID: "done", Layer: 3, Value: 180, Type: flow.NodeDestination},
		},
		[]flow.Link{
			{ID: "l1", From: "intake", To: "triage", Value: 200},
			{ID: "l2", From: "intake", To: "manual", Value: 100},
			{ID: "l3", From: "triage", To: "resolve", Value: 150},
			{ID: "l4", From: "triage", To: "churn", Value: 50, Type: flow.LinkLoss},
			{ID: "l5", From: "manual", To: "resolve", Value: 30},
			{ID: "l6", From: "manual", To: "rework", Value: 40, Type: flow.LinkLoss},
			{ID: "l7", From: "manual", To: "churn", Value: 30, Type: flow.LinkLoss},
			{ID: "l8", From: "resolve", To: "done", Value: 180},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 0 {
		t.Fatalf("dropped %d links", len(dropped))
	}
	return g
}
