package flow

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidLinkID is returned by [Graph.AddLink] when the link ID is empty.
	ErrInvalidLinkID = errors.New("link ID must not be empty")

	// ErrNegativeLayer is returned by [Graph.AddNode] when the node's layer
	// index is negative. Layers index left-to-right columns starting at 0.
	ErrNegativeLayer = errors.New("layer index must not be negative")
)

// NodeType classifies a node for styling and narrative emphasis.
// The layout engine ignores it; the narrative controller uses Loss nodes to
// decide what pulses during the bleed phase, and the renderers map types to
// colors.
type NodeType string

// Node types.
const (
	NodeDefault     NodeType = "default"
	NodeSource      NodeType = "source"
	NodeSolution    NodeType = "solution"
	NodeLoss        NodeType = "loss"
	NodeNew         NodeType = "new"
	NodeRevenue     NodeType = "revenue"
	NodeDestination NodeType = "destination"
)

// LinkType classifies a link the same way [NodeType] classifies nodes.
type LinkType string

// Link types.
const (
	LinkDefault LinkType = "default"
	LinkLoss    LinkType = "loss"
	LinkNew     LinkType = "new"
	LinkRevenue LinkType = "revenue"
)

// Node is a weighted vertex assigned to a layer.
//
// Value drives visual size and must be positive in well-formed input;
// non-positive values are tolerated and clamp to the minimum visual
// thickness during layout rather than disappearing.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label,omitempty"`
	Layer int      `json:"layer"`
	Value float64  `json:"value"`
	Type  NodeType `json:"type,omitempty"`

	// YHint, when non-nil, places the node vertically within its layer as a
	// fraction in [0,1]. Nodes without a hint are evenly spaced.
	YHint *float64 `json:"y_hint,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// IsLoss reports whether the node carries the loss type used by the bleed
// phase.
func (n Node) IsLoss() bool { return n.Type == NodeLoss }

// Link is a weighted directed connection between two nodes.
type Link struct {
	ID    string   `json:"id"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Value float64  `json:"value"`
	Type  LinkType `json:"type,omitempty"`
}

// IsLoss reports whether the link carries the loss type.
func (l Link) IsLoss() bool { return l.Type == LinkLoss }

// Graph is a layered flow graph. The zero value is not usable - use [New].
// Graph is not safe for concurrent mutation without external
// synchronization; once fully built it is safe to read from any goroutine.
type Graph struct {
	nodes  map[string]*Node
	order  []string // node IDs in insertion order
	links  []Link
	layers map[int][]*Node // layer -> nodes in insertion order
}

// New creates an empty flow graph.
func New() *Graph {
	return &Graph{
		nodes:  make(map[string]*Node),
		layers: make(map[int][]*Node),
	}
}

// Build constructs a graph from node and link slices, which is the common
// path for JSON-supplied diagrams. Node errors are fatal; dangling links are
// dropped per the degraded-input policy and reported in the second return
// value so callers can log them.
func Build(nodes []Node, links []Link) (*Graph, []Link, error) {
	g := New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			return nil, nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	var dropped []Link
	for _, l := range links {
		if err := g.AddLink(l); err != nil {
			if errors.Is(err, ErrInvalidLinkID) {
				return nil, nil, fmt.Errorf("add link %s→%s: %w", l.From, l.To, err)
			}
			dropped = append(dropped, l)
		}
	}
	return g, dropped, nil
}

// AddNode adds a node and indexes it by layer.
// Returns ErrInvalidNodeID, ErrNegativeLayer, or ErrDuplicateNodeID on
// malformed input.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.Layer < 0 {
		return ErrNegativeLayer
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Type == "" {
		n.Type = NodeDefault
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	g.layers[node.Layer] = append(g.layers[node.Layer], node)
	return nil
}

// errDanglingLink marks links whose endpoints are missing. It is internal:
// callers of AddLink observe it only through errors.Is on the wrapped error,
// and Build converts it into the dropped-links slice.
var errDanglingLink = errors.New("link endpoint not in node set")

// AddLink adds a link between two existing nodes. A link referencing an
// unknown node is rejected with a non-fatal error; per the degraded-input
// policy callers should drop it and continue.
func (g *Graph) AddLink(l Link) error {
	if l.ID == "" {
		return ErrInvalidLinkID
	}
	if _, ok := g.nodes[l.From]; !ok {
		return fmt.Errorf("%w: from %q", errDanglingLink, l.From)
	}
	if _, ok := g.nodes[l.To]; !ok {
		return fmt.Errorf("%w: to %q", errDanglingLink, l.To)
	}
	if l.Type == "" {
		l.Type = LinkDefault
	}
	g.links = append(g.links, l)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Links returns a copy of all links in insertion order. Every returned link
// has both endpoints present; dangling links never enter the graph.
func (g *Graph) Links() []Link { return slices.Clone(g.links) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// NodesInLayer returns the nodes assigned to the given layer in insertion
// order, or nil for an empty layer.
func (g *Graph) NodesInLayer(layer int) []*Node { return g.layers[layer] }

// LayerCount returns the number of distinct populated layers.
func (g *Graph) LayerCount() int { return len(g.layers) }

// Layers returns the populated layer indices in ascending order.
func (g *Graph) Layers() []int {
	ids := make([]int, 0, len(g.layers))
	for l := range g.layers {
		ids = append(ids, l)
	}
	slices.Sort(ids)
	return ids
}

// MaxLayer returns the highest layer index, or -1 for an empty graph.
func (g *Graph) MaxLayer() int {
	max := -1
	for l := range g.layers {
		if l > max {
			max = l
		}
	}
	return max
}

// Incoming returns the links terminating at the node, in insertion order.
func (g *Graph) Incoming(id string) []Link {
	var in []Link
	for _, l := range g.links {
		if l.To == id {
			in = append(in, l)
		}
	}
	return in
}

// Outgoing returns the links originating at the node, in insertion order.
func (g *Graph) Outgoing(id string) []Link {
	var out []Link
	for _, l := range g.links {
		if l.From == id {
			out = append(out, l)
		}
	}
	return out
}

// MaxLinkValue returns the largest link value in the graph, or 0 when there
// are no links. The layout engine uses it to normalize thickness.
func (g *Graph) MaxLinkValue() float64 {
	var max float64
	for _, l := range g.links {
		if l.Value > max {
			max = l.Value
		}
	}
	return max
}
