// Package pipeline runs the load → layout → render pipeline shared by
// the CLI commands and watch mode.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a flow document and build the validated graph
//  2. Layout: compute positioned geometry for one viewport
//  3. Render: emit artifacts in the requested formats
//
// Layout and render results are cached by content identity: the graph
// fingerprint plus viewport keys geometry, the geometry hash plus render
// options keys each artifact. Re-rendering an unchanged document is
// therefore almost free, which is what makes watch mode pleasant.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "flows/before.json",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/heynickashwin-oss/viashift/pkg/cache"
	"github.com/heynickashwin-oss/viashift/pkg/flow"
	"github.com/heynickashwin-oss/viashift/pkg/flow/layout"
	"github.com/heynickashwin-oss/viashift/pkg/render/sankey"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 700.0

	// DefaultScale is the default PNG supersampling factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options. Exactly one of Input or Document must be set.
	Input    string         `json:"input,omitempty"`
	Document *flow.Document `json:"document,omitempty"`

	// Layout options.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options.
	Formats []string      `json:"formats,omitempty"`
	Scale   float64       `json:"scale,omitempty"`
	Frame   *sankey.Frame `json:"frame,omitempty"`
	Refresh bool          `json:"refresh,omitempty"`

	// Runtime options (not serialized).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" && o.Document == nil {
		return fmt.Errorf("input path or document is required")
	}
	if o.Input != "" && o.Document != nil {
		return fmt.Errorf("input path and document are mutually exclusive")
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return fmt.Errorf("invalid format: %q (must be one of: svg, png, json, dot)", f)
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Viewport returns the layout viewport for these options.
func (o *Options) Viewport() layout.Viewport {
	return layout.Viewport{Width: o.Width, Height: o.Height}
}

// GeometryKeyOpts returns cache key options for geometry computation.
func (o *Options) GeometryKeyOpts() cache.GeometryKeyOpts {
	return cache.GeometryKeyOpts{Width: o.Width, Height: o.Height}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Frame-clipped renders are never cached, so the key only carries
// format and scale.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Scale: o.Scale}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution in logs and hooks.
	RunID string

	// Graph is the validated flow graph.
	Graph *flow.Graph

	// Dropped lists links removed because an endpoint was missing.
	Dropped []flow.Link

	// Fingerprint is the graph's content identity.
	Fingerprint flow.Fingerprint

	// Geometry is the positioned layout, nil when the viewport was not
	// ready (below the minimum width).
	Geometry *layout.Geometry

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per pipeline stage.
type CacheInfo struct {
	GeometryHit bool
	RenderHit   bool
}
