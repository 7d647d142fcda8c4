package layout

import (
	"encoding/json"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
)

// Viewport is the drawable area in user units (typically CSS pixels).
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a 2D coordinate in viewport units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutNode is a positioned node. Coordinates are top-left with y growing
// downward, matching SVG conventions.
type LayoutNode struct {
	ID     string        `json:"id"`
	Label  string        `json:"label,omitempty"`
	Type   flow.NodeType `json:"type,omitempty"`
	Layer  int           `json:"layer"`
	Value  float64       `json:"value"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
}

// CenterY returns the vertical center of the node.
func (n LayoutNode) CenterY() float64 { return n.Y + n.Height/2 }

// Right returns the x coordinate of the node's right edge, where outgoing
// flow bands attach.
func (n LayoutNode) Right() float64 { return n.X + n.Width }

// LayoutLink is a positioned link with its rendered thickness and the cubic
// Bézier path connecting its band midpoints on the source and target edges.
type LayoutLink struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Type      flow.LinkType `json:"type,omitempty"`
	Value     float64       `json:"value"`
	Layer     int           `json:"layer"` // target node's layer, drives draw windows
	Thickness float64       `json:"thickness"`
	Path      Cubic         `json:"path"`
	PathLen   float64       `json:"path_len"`

	// Midpoint is the 50% parametric point, the general-purpose anchor.
	Midpoint Point `json:"midpoint"`
	// NearTarget is the 90% parametric point, used for end-of-flow labels so
	// they don't clutter mid-flow.
	NearTarget Point `json:"near_target"`
}

// Geometry is the immutable positioned output for one graph+viewport
// combination. It is recomputed wholesale when either input changes and is
// never mutated in place, so it may be read concurrently without
// synchronization.
type Geometry struct {
	Viewport   Viewport     `json:"viewport"`
	Nodes      []LayoutNode `json:"nodes"`
	Links      []LayoutLink `json:"links"`
	LayerCount int          `json:"layer_count"`

	index map[string]int // node ID -> index into Nodes
}

// UnmarshalJSON rebuilds the node index after decoding, so geometry
// restored from a cache behaves like freshly computed geometry.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	type plain Geometry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = Geometry(p)
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.index[n.ID] = i
	}
	return nil
}

// Node returns the positioned node with the given ID and true, or a zero
// node and false.
func (g *Geometry) Node(id string) (LayoutNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return LayoutNode{}, false
	}
	return g.Nodes[i], true
}

// NodePositions returns node top-left positions keyed by ID. This is the
// payload of the layout-ready hook, consumed by external overlays such as
// hover cards.
func (g *Geometry) NodePositions() map[string]Point {
	pos := make(map[string]Point, len(g.Nodes))
	for _, n := range g.Nodes {
		pos[n.ID] = Point{X: n.X, Y: n.Y}
	}
	return pos
}

// NodesInLayer returns the positioned nodes of one layer in stacking order.
func (g *Geometry) NodesInLayer(layer int) []LayoutNode {
	var out []LayoutNode
	for _, n := range g.Nodes {
		if n.Layer == layer {
			out = append(out, n)
		}
	}
	return out
}
