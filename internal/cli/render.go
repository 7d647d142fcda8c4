package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heynickashwin-oss/viashift/pkg/pipeline"
	"github.com/heynickashwin-oss/viashift/pkg/watcher"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file path (or base path for multiple formats)
	formats []string // output formats: "svg", "png", "json", "dot"
	width   float64  // viewport width in pixels
	height  float64  // viewport height in pixels
	scale   float64  // PNG supersampling factor
	refresh bool     // bypass the cache and recompute everything
	watch   bool     // re-render whenever the input file changes
}

// newRenderCmd creates the render command for generating flow diagram artifacts.
// It supports multiple output formats (SVG, PNG, JSON, DOT) and a watch mode
// that re-runs the pipeline whenever the input document changes.
//
// Default settings come from the loaded configuration (format, viewport size,
// PNG scale); flags override them per invocation.
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a flow document to SVG/PNG/JSON/DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if formatsStr == "" {
				formatsStr = cfg.Render.Format
			}
			opts.formats = strings.Split(formatsStr, ",")
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if opts.width == 0 {
				opts.width = cfg.Render.Width
			}
			if opts.height == 0 {
				opts.height = cfg.Render.Height
			}
			if opts.scale == 0 {
				opts.scale = cfg.Render.Scale
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG supersampling factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cache and recompute everything")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render whenever the input file changes")

	return cmd
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !pipeline.ValidFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'json', or 'dot')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
// This is used when generating multiple files (e.g., flow.svg, flow.png).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender executes the pipeline for input and writes the artifacts.
// In watch mode it then blocks, re-running the pipeline after each debounced
// change to the input file until the context is cancelled.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	backend, err := newCacheBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(backend, nil, logger)
	defer runner.Close()

	if err := renderOnce(ctx, runner, input, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	w, err := watcher.New(input, watcher.WithOnError(func(err error) {
		logger.Warnf("watch: %v", err)
	}))
	if err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}
	defer w.Stop()

	logger.Infof("Watching %s for changes (ctrl+c to stop)", input)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.Changed():
			if err := renderOnce(ctx, runner, input, opts); err != nil {
				// Keep watching: half-saved files produce transient
				// parse errors that resolve on the next write.
				logger.Errorf("re-render: %v", err)
			}
		}
	}
}

// renderOnce runs the pipeline a single time and writes all artifacts.
func renderOnce(ctx context.Context, runner *pipeline.Runner, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:   input,
		Width:   opts.width,
		Height:  opts.height,
		Formats: opts.formats,
		Scale:   opts.scale,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	if result.Geometry == nil {
		logger.Warnf("Viewport %gx%g too small, nothing rendered", opts.width, opts.height)
		return nil
	}
	if len(result.Dropped) > 0 {
		logger.Warnf("Dropped %d dangling links", len(result.Dropped))
	}
	logger.Infof("Layout %s, render %s",
		cacheBadge(result.CacheInfo.GeometryHit), cacheBadge(result.CacheInfo.RenderHit))

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Infof("Generated %s (%d bytes)", path, len(data))
	}

	prog.done(fmt.Sprintf("Rendered %d nodes, %d links", result.Stats.NodeCount, result.Stats.LinkCount))
	return nil
}
