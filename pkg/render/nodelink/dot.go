// Package nodelink renders flow graphs as plain node-link diagrams via
// Graphviz. It ignores computed geometry entirely: the point is a quick
// topology check of layers, links and types before any Sankey layout.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes layer and value in node labels. When false,
	// only the label (or ID) is shown.
	Detailed bool
}

// typeColors maps node types to Graphviz fill colors.
var typeColors = map[flow.NodeType]string{
	flow.NodeSource:      "lightblue",
	flow.NodeSolution:    "palegreen",
	flow.NodeLoss:        "lightsalmon",
	flow.NodeNew:         "plum",
	flow.NodeRevenue:     "palegreen",
	flow.NodeDestination: "lightgrey",
}

// ToDOT converts a flow graph to Graphviz DOT. Left-to-right rank
// direction matches the Sankey reading order; same-layer nodes share a
// rank. Edge pen width scales with link value.
func ToDOT(g *flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, layer := range g.Layers() {
		buf.WriteString("  { rank=same;")
		for _, n := range g.NodesInLayer(layer) {
			fmt.Fprintf(&buf, " %q;", n.ID)
		}
		buf.WriteString(" }\n")
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	maxValue := g.MaxLinkValue()
	for _, l := range g.Links() {
		fmt.Fprintf(&buf, "  %q -> %q [penwidth=%.1f%s];\n",
			l.From, l.To, penWidth(l.Value, maxValue), edgeColor(l))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *flow.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nlayer: %d\nvalue: %g", label, n.Layer, n.Value)
}

func fmtAttrs(n *flow.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if c, ok := typeColors[n.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%s", c))
	}
	if n.Type == flow.NodeLoss {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// penWidth maps a link value onto 1..6 points relative to the largest
// link.
func penWidth(value, maxValue float64) float64 {
	if maxValue <= 0 || value <= 0 {
		return 1
	}
	return 1 + 5*value/maxValue
}

func edgeColor(l flow.Link) string {
	switch l.Type {
	case flow.LinkLoss:
		return `, color=salmon`
	case flow.LinkRevenue:
		return `, color=darkseagreen`
	case flow.LinkNew:
		return `, color=plum`
	default:
		return ""
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's svg element so the viewBox origin
// is zero and width/height are explicit pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
