package layout

import (
	"cmp"
	"slices"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
)

// Layout tuning constants. All values are in viewport units.
const (
	// MinViewportWidth is the usability floor below which Compute reports
	// "not ready" rather than producing an unreadably cramped diagram.
	MinViewportWidth = 320.0

	nodeWidth     = 16.0
	nodeGap       = 14.0
	minNodeHeight = 24.0

	// thicknessFloor keeps zero/tiny values visible and clickable.
	thicknessFloor = 1.5

	// usableHeightFrac is the share of vertical space the densest layer may
	// occupy after scaling.
	usableHeightFrac = 0.90

	// maxScale caps upscaling so sparse diagrams don't balloon.
	maxScale = 1.2

	// topBiasCenter places layer columns slightly above the vertical center
	// to compensate for UI chrome overlaying the lower portion.
	topBiasCenter = 0.46

	minColumnTop = 10.0
)

// Compute lays out a flow graph inside the viewport.
//
// It returns nil when the graph has no nodes or the viewport width is below
// [MinViewportWidth]; both are valid "not ready" results, never errors. The
// returned geometry is immutable and deterministic: identical input yields
// identical output, including link stacking order.
func Compute(g *flow.Graph, vp Viewport) *Geometry {
	if g == nil || g.NodeCount() == 0 || vp.Width < MinViewportWidth || vp.Height <= 0 {
		return nil
	}

	layers := g.Layers()
	band := thicknessBand(densestLayer(g), vp.Height)

	// Base thickness per link, proportional to value within the adaptive band.
	maxValue := g.MaxLinkValue()
	baseThickness := make(map[string]float64, g.LinkCount())
	for _, l := range g.Links() {
		baseThickness[l.ID] = band.thickness(l.Value, maxValue)
	}

	// A node must be tall enough to host every flow band touching it.
	baseHeight := make(map[string]float64, g.NodeCount())
	for _, n := range g.Nodes() {
		h := max(minNodeHeight, sideSum(g.Incoming(n.ID), baseThickness), sideSum(g.Outgoing(n.ID), baseThickness))
		baseHeight[n.ID] = h
	}

	scale := fitScale(g, layers, baseHeight, vp.Height)

	thickness := make(map[string]float64, len(baseThickness))
	for id, t := range baseThickness {
		thickness[id] = max(thicknessFloor, t*scale)
	}
	// Recompute heights from scaled thickness so the no-overflow invariant
	// holds by construction even after floor clamping.
	height := make(map[string]float64, len(baseHeight))
	for _, n := range g.Nodes() {
		height[n.ID] = max(minNodeHeight*scale, sideSum(g.Incoming(n.ID), thickness), sideSum(g.Outgoing(n.ID), thickness))
	}

	geo := &Geometry{
		Viewport:   vp,
		LayerCount: len(layers),
		index:      make(map[string]int),
	}

	xs := layerXPositions(layers, vp.Width)
	layerIndex := make(map[int]int, len(layers))
	for i, l := range layers {
		layerIndex[l] = i
	}

	for i, l := range layers {
		column := orderLayer(g.NodesInLayer(l))
		var colHeight float64
		for _, n := range column {
			colHeight += height[n.ID]
		}
		colHeight += nodeGap * float64(len(column)-1)

		y := max(minColumnTop, vp.Height*topBiasCenter-colHeight/2)
		for _, n := range column {
			geo.index[n.ID] = len(geo.Nodes)
			geo.Nodes = append(geo.Nodes, LayoutNode{
				ID:     n.ID,
				Label:  n.DisplayLabel(),
				Type:   n.Type,
				Layer:  layerIndex[l],
				Value:  n.Value,
				X:      xs[i],
				Y:      y,
				Width:  nodeWidth,
				Height: height[n.ID],
			})
			y += height[n.ID] + nodeGap
		}
	}

	geo.Links = placeLinks(g, geo, thickness, layerIndex)
	return geo
}

// densestLayer returns the node count of the most populated layer.
func densestLayer(g *flow.Graph) int {
	var densest int
	for _, l := range g.Layers() {
		if n := len(g.NodesInLayer(l)); n > densest {
			densest = n
		}
	}
	return densest
}

// sideSum totals the thickness of the links on one side of a node.
func sideSum(links []flow.Link, thickness map[string]float64) float64 {
	var sum float64
	for _, l := range links {
		sum += thickness[l.ID]
	}
	return sum
}

// fitScale computes the uniform scale factor that fits the tallest stacked
// column into the usable vertical space, capped so sparse diagrams don't
// oversize.
func fitScale(g *flow.Graph, layers []int, baseHeight map[string]float64, vpHeight float64) float64 {
	var tallest float64
	for _, l := range layers {
		column := g.NodesInLayer(l)
		var h float64
		for _, n := range column {
			h += baseHeight[n.ID]
		}
		h += nodeGap * float64(len(column)-1)
		if h > tallest {
			tallest = h
		}
	}
	if tallest <= 0 {
		return 1
	}
	return min(maxScale, usableHeightFrac*vpHeight/tallest)
}

// layerXPositions returns the left x coordinate for each layer column. Edge
// layers reserve extra margin for external labels, so columns are not
// necessarily evenly spaced across the full width.
func layerXPositions(layers []int, vpWidth float64) []float64 {
	margin := min(160.0, max(64.0, vpWidth*0.12))
	if len(layers) == 1 {
		return []float64{(vpWidth - nodeWidth) / 2}
	}
	span := vpWidth - 2*margin - nodeWidth
	xs := make([]float64, len(layers))
	for i := range layers {
		frac := float64(i) / float64(len(layers)-1)
		xs[i] = margin + frac*span
	}
	return xs
}

// orderLayer sorts a layer's nodes by vertical hint, defaulting to even
// spacing by insertion index. The sort is stable so unhinted nodes keep
// their input order.
func orderLayer(nodes []*flow.Node) []*flow.Node {
	column := slices.Clone(nodes)
	count := len(column)
	hint := func(i int, n *flow.Node) float64 {
		if n.YHint != nil {
			return *n.YHint
		}
		return float64(i+1) / float64(count+1)
	}
	hints := make(map[string]float64, count)
	for i, n := range column {
		hints[n.ID] = hint(i, n)
	}
	slices.SortStableFunc(column, func(a, b *flow.Node) int {
		return cmp.Compare(hints[a.ID], hints[b.ID])
	})
	return column
}

// placeLinks assigns every link a vertical band on each node edge and builds
// its curve. Bands at one edge are contiguous, centered on the node, and
// stacked in deterministic order: source y, then target y, then link ID.
func placeLinks(g *flow.Graph, geo *Geometry, thickness map[string]float64, layerIndex map[int]int) []LayoutLink {
	links := g.Links()
	slices.SortStableFunc(links, func(a, b flow.Link) int {
		na, _ := geo.Node(a.From)
		nb, _ := geo.Node(b.From)
		if c := cmp.Compare(na.Y, nb.Y); c != 0 {
			return c
		}
		ta, _ := geo.Node(a.To)
		tb, _ := geo.Node(b.To)
		if c := cmp.Compare(ta.Y, tb.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	srcY := bandOffsets(links, geo, thickness, func(l flow.Link) string { return l.From })
	dstY := bandOffsets(links, geo, thickness, func(l flow.Link) string { return l.To })

	out := make([]LayoutLink, 0, len(links))
	for _, l := range links {
		src, _ := geo.Node(l.From)
		dst, _ := geo.Node(l.To)
		from := Point{X: src.Right(), Y: srcY[l.ID]}
		to := Point{X: dst.X, Y: dstY[l.ID]}
		curve := flowCurve(from, to)

		target, _ := g.Node(l.To)
		out = append(out, LayoutLink{
			ID:         l.ID,
			From:       l.From,
			To:         l.To,
			Type:       l.Type,
			Value:      l.Value,
			Layer:      layerIndex[target.Layer],
			Thickness:  thickness[l.ID],
			Path:       curve,
			PathLen:    curve.Length(),
			Midpoint:   curve.PointAt(0.5),
			NearTarget: curve.PointAt(0.9),
		})
	}
	return out
}

// bandOffsets walks the links in stacking order and assigns each one the
// vertical midpoint of its band on the edge selected by side.
func bandOffsets(links []flow.Link, geo *Geometry, thickness map[string]float64, side func(flow.Link) string) map[string]float64 {
	perNode := make(map[string][]flow.Link)
	for _, l := range links {
		id := side(l)
		perNode[id] = append(perNode[id], l)
	}

	offsets := make(map[string]float64, len(links))
	for nodeID, attached := range perNode {
		n, _ := geo.Node(nodeID)
		var total float64
		for _, l := range attached {
			total += thickness[l.ID]
		}
		cursor := n.Y + (n.Height-total)/2
		for _, l := range attached {
			offsets[l.ID] = cursor + thickness[l.ID]/2
			cursor += thickness[l.ID]
		}
	}
	return offsets
}
