package sankey

import (
	"bytes"
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
	"github.com/heynickashwin-oss/viashift/pkg/flow/layout"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme  Theme
	frame  Frame
	title  string
	labels bool
}

// WithTheme overrides the default palette.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithFrame clips the artifact to one sampled animation state.
func WithFrame(f Frame) SVGOption { return func(r *svgRenderer) { r.frame = f } }

// WithTitle renders a title in the top-left corner.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithoutLabels suppresses node labels, for thumbnail-sized output.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG renders the geometry as a standalone SVG document.
func RenderSVG(g *layout.Geometry, opts ...SVGOption) []byte {
	r := svgRenderer{theme: DefaultTheme(), frame: FullFrame(), labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	w, h := int(g.Viewport.Width), int(g.Viewport.Height)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, fmt.Sprintf("fill:%s", css(r.theme.Background)))

	if r.frame.Dim > 0 {
		canvas.Gstyle(fmt.Sprintf("opacity:%.3f", r.frame.Dim))

		// Links underneath nodes, in stacking order.
		for _, l := range g.Links {
			r.renderLink(canvas, l)
		}
		for _, n := range g.Nodes {
			r.renderNode(canvas, n)
		}

		canvas.Gend()
	}

	if r.title != "" {
		canvas.Text(16, 28, r.title,
			fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold", css(r.theme.Label)))
	}

	canvas.End()
	return buf.Bytes()
}

// renderLink draws one flow band, revealed along its path by the frame's
// draw fraction for the link's target layer.
func (r *svgRenderer) renderLink(canvas *svg.SVG, l layout.LayoutLink) {
	draw := r.frame.layerDraw(l.Layer)
	if draw <= 0 {
		return
	}

	alpha := 0.85
	color := r.theme.linkColor(l.Type)
	if l.Type == flow.LinkLoss && r.frame.LossActive {
		color = r.theme.LossGlow
		alpha = r.frame.lossAlpha()
	}

	style := fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:%.3f;stroke-width:%.2f",
		css(color), alpha, l.Thickness)
	if draw < 1 {
		// Dash the full path length and offset the gap so exactly the
		// first draw fraction is visible.
		style += fmt.Sprintf(";stroke-dasharray:%.2f;stroke-dashoffset:%.2f",
			l.PathLen, l.PathLen*(1-draw))
	}
	canvas.Path(l.Path.SVGPath(), style)
}

// renderNode draws one node rectangle plus its label, faded in with its
// layer's draw fraction.
func (r *svgRenderer) renderNode(canvas *svg.SVG, n layout.LayoutNode) {
	draw := r.frame.layerDraw(n.Layer)
	if draw <= 0 {
		return
	}

	alpha := draw
	color := r.theme.nodeColor(n.Type)
	if n.Type == flow.NodeLoss && r.frame.LossActive {
		alpha = draw * r.frame.lossAlpha()
	}

	canvas.Rect(int(n.X), int(n.Y), int(n.Width), int(n.Height),
		fmt.Sprintf("fill:%s;fill-opacity:%.3f", css(color), alpha))

	if r.labels && n.Label != "" {
		canvas.Text(int(n.Right())+6, int(n.CenterY())+4, n.Label,
			fmt.Sprintf("fill:%s;fill-opacity:%.3f;font-size:12px;font-family:sans-serif", css(r.theme.Label), alpha))
	}
}
