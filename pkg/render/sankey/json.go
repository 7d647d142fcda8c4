package sankey

import (
	"encoding/json"

	"github.com/heynickashwin-oss/viashift/pkg/flow/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	title string
	frame *Frame
}

// WithJSONTitle records the diagram title in the output.
func WithJSONTitle(t string) JSONOption { return func(r *jsonRenderer) { r.title = t } }

// WithJSONFrame records the sampled animation state alongside the
// geometry, for hosts that apply clipping themselves.
func WithJSONFrame(f Frame) JSONOption { return func(r *jsonRenderer) { r.frame = &f } }

// jsonArtifact is the serialized shape.
type jsonArtifact struct {
	Title    string           `json:"title,omitempty"`
	Geometry *layout.Geometry `json:"geometry"`
	Frame    *Frame           `json:"frame,omitempty"`
}

// RenderJSON serializes the geometry, optionally with a sampled frame,
// as indented JSON.
func RenderJSON(g *layout.Geometry, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return json.MarshalIndent(jsonArtifact{Title: r.title, Geometry: g, Frame: r.frame}, "", "  ")
}
