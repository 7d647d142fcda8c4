package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/heynickashwin-oss/viashift/pkg/cache"
	"github.com/heynickashwin-oss/viashift/pkg/flow"
	"github.com/heynickashwin-oss/viashift/pkg/flow/layout"
	"github.com/heynickashwin-oss/viashift/pkg/observability"
	"github.com/heynickashwin-oss/viashift/pkg/render/nodelink"
	"github.com/heynickashwin-oss/viashift/pkg/render/sankey"
)

// Runner executes the pipeline with caching. It is stateless except for
// the cache and logger; multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer gets the default keyer, a nil
// cache disables caching, a nil logger uses the package default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	doc, g, dropped, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	opts.Document, opts.Input = &doc, ""
	result.Graph = g
	result.Dropped = dropped
	result.Fingerprint = g.Fingerprint()
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(g.Nodes())
	result.Stats.LinkCount = len(g.Links())

	logger.Info("loaded flow graph",
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"dropped", len(dropped),
		"fingerprint", result.Fingerprint.Short())

	// Stage 2: Layout
	layoutStart := time.Now()
	geom, layoutHit, err := r.ComputeGeometryWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Geometry = geom
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.GeometryHit = layoutHit
	if geom == nil {
		logger.Warn("viewport not ready, skipping render",
			"width", opts.Width, "height", opts.Height)
		return result, nil
	}

	logger.Info("computed geometry",
		"layers", geom.LayerCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, geom, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the flow document and builds the validated graph.
func (r *Runner) Load(ctx context.Context, opts Options) (flow.Document, *flow.Graph, []flow.Link, error) {
	var doc flow.Document
	if opts.Document != nil {
		doc = *opts.Document
	} else {
		var err error
		doc, err = flow.ReadDocumentFile(opts.Input)
		if err != nil {
			return flow.Document{}, nil, nil, err
		}
	}
	g, dropped, err := doc.Graph()
	return doc, g, dropped, err
}

// ComputeGeometryWithCacheInfo computes positioned geometry, consulting
// the cache first. A nil geometry (viewport not ready) is returned
// without error and never cached.
func (r *Runner) ComputeGeometryWithCacheInfo(ctx context.Context, g *flow.Graph, opts Options) (*layout.Geometry, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.GeometryKey(string(g.Fingerprint()), opts.GeometryKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Geometry
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, true, nil
			}
			// Fall through to recompute on a corrupt entry.
		}
	}

	start := time.Now()
	geom := layout.Compute(g, opts.Viewport())
	if geom == nil {
		return nil, false, nil
	}
	observability.Layout().OnLayoutReady(g.Fingerprint().Short(), flatPositions(geom), time.Since(start))

	if data, err := json.Marshal(geom); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGeometry)
	}
	return geom, false, nil
}

// ComputeGeometry is a convenience wrapper that discards cache hit info.
func (r *Runner) ComputeGeometry(ctx context.Context, g *flow.Graph, opts Options) (*layout.Geometry, error) {
	geom, _, err := r.ComputeGeometryWithCacheInfo(ctx, g, opts)
	return geom, err
}

// RenderWithCacheInfo renders all requested formats. Static renders are
// cached per format; frame-clipped renders (opts.Frame set) bypass the
// cache since every frame differs.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, geom *layout.Geometry, g *flow.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	geomData, err := json.Marshal(geom)
	if err != nil {
		return nil, false, fmt.Errorf("serialize geometry for cache key: %w", err)
	}
	geomHash := cache.Hash(geomData)

	cacheable := opts.Frame == nil && !opts.Refresh
	if cacheable {
		artifacts := make(map[string][]byte, len(opts.Formats))
		allCached := true
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(geomHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached {
			return artifacts, true, nil
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.renderFormat(ctx, format, geom, g, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		if opts.Frame == nil {
			key := r.Keyer.ArtifactKey(geomHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that discards cache hit info.
func (r *Runner) Render(ctx context.Context, geom *layout.Geometry, g *flow.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, geom, g, opts)
	return artifacts, err
}

// renderFormat dispatches one format to its sink.
func (r *Runner) renderFormat(ctx context.Context, format string, geom *layout.Geometry, g *flow.Graph, opts Options) ([]byte, error) {
	frame := sankey.FullFrame()
	if opts.Frame != nil {
		frame = *opts.Frame
	}
	title := ""
	if opts.Document != nil {
		title = opts.Document.Title
	}

	switch format {
	case FormatSVG:
		return sankey.RenderSVG(geom, sankey.WithFrame(frame), sankey.WithTitle(title)), nil
	case FormatPNG:
		return sankey.RenderPNG(geom,
			sankey.WithPNGFrame(frame), sankey.WithPNGScale(opts.Scale))
	case FormatJSON:
		jsonOpts := []sankey.JSONOption{sankey.WithJSONTitle(title)}
		if opts.Frame != nil {
			jsonOpts = append(jsonOpts, sankey.WithJSONFrame(frame))
		}
		return sankey.RenderJSON(geom, jsonOpts...)
	case FormatDOT:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{}))
	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// flatPositions converts node positions to the hook payload shape.
func flatPositions(geom *layout.Geometry) map[string][2]float64 {
	pos := make(map[string][2]float64, len(geom.Nodes))
	for id, p := range geom.NodePositions() {
		pos[id] = [2]float64{p.X, p.Y}
	}
	return pos
}
