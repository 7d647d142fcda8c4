package sankey

import (
	"fmt"
	"image/color"

	"github.com/heynickashwin-oss/viashift/pkg/flow"
)

// Theme maps node and link types to colors.
type Theme struct {
	Background color.RGBA
	Node       map[flow.NodeType]color.RGBA
	Link       map[flow.LinkType]color.RGBA
	Label      color.RGBA
	LossGlow   color.RGBA
}

// DefaultTheme is a dark palette with warm loss highlights.
func DefaultTheme() Theme {
	return Theme{
		Background: color.RGBA{R: 0x0f, G: 0x14, B: 0x1c, A: 0xff},
		Node: map[flow.NodeType]color.RGBA{
			flow.NodeDefault:     {R: 0x5b, G: 0x8d, B: 0xc9, A: 0xff},
			flow.NodeSource:      {R: 0x7a, G: 0xa7, B: 0xd9, A: 0xff},
			flow.NodeSolution:    {R: 0x4c, G: 0xb8, B: 0x8a, A: 0xff},
			flow.NodeLoss:        {R: 0xd9, G: 0x6a, B: 0x4a, A: 0xff},
			flow.NodeNew:         {R: 0x8f, G: 0x6f, B: 0xd9, A: 0xff},
			flow.NodeRevenue:     {R: 0x4c, G: 0xb8, B: 0x8a, A: 0xff},
			flow.NodeDestination: {R: 0x9a, G: 0xa5, B: 0xb5, A: 0xff},
		},
		Link: map[flow.LinkType]color.RGBA{
			flow.LinkDefault: {R: 0x3d, G: 0x5a, B: 0x80, A: 0xff},
			flow.LinkLoss:    {R: 0xc9, G: 0x5b, B: 0x3d, A: 0xff},
			flow.LinkNew:     {R: 0x7a, G: 0x5f, B: 0xc9, A: 0xff},
			flow.LinkRevenue: {R: 0x3d, G: 0xa8, B: 0x78, A: 0xff},
		},
		Label:    color.RGBA{R: 0xe8, G: 0xec, B: 0xf2, A: 0xff},
		LossGlow: color.RGBA{R: 0xff, G: 0x8a, B: 0x5c, A: 0xff},
	}
}

// nodeColor returns the theme color for a node type, falling back to the
// default type.
func (t Theme) nodeColor(typ flow.NodeType) color.RGBA {
	if c, ok := t.Node[typ]; ok {
		return c
	}
	return t.Node[flow.NodeDefault]
}

// linkColor returns the theme color for a link type, falling back to the
// default type.
func (t Theme) linkColor(typ flow.LinkType) color.RGBA {
	if c, ok := t.Link[typ]; ok {
		return c
	}
	return t.Link[flow.LinkDefault]
}

// css formats a color as a CSS hex string.
func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
