// Package render groups the output sinks for flow diagrams.
//
// # Sankey diagrams
//
// The [sankey] subpackage is the primary sink: it renders positioned
// flow geometry as SVG, PNG or JSON, optionally clipped to a sampled
// animation frame.
//
//	data := sankey.RenderSVG(geom, sankey.WithFrame(frame))
//
// # Node-link diagrams
//
// The [nodelink] subpackage renders the underlying flow graph as a
// plain Graphviz diagram, without layout or animation. It exists for
// debugging graph topology before worrying about geometry.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [sankey]: github.com/heynickashwin-oss/viashift/pkg/render/sankey
// [nodelink]: github.com/heynickashwin-oss/viashift/pkg/render/nodelink
package render
