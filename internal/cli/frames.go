package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/heynickashwin-oss/viashift/pkg/flow/narrative"
	"github.com/heynickashwin-oss/viashift/pkg/pipeline"
	"github.com/heynickashwin-oss/viashift/pkg/render/sankey"
)

// framesOpts holds the command-line flags for the frames command.
type framesOpts struct {
	output  string  // output directory for the frame sequence
	fps     int     // frames per second of the exported sequence
	width   float64 // viewport width in pixels
	height  float64 // viewport height in pixels
	variant string  // diagram variant label: "before" or "after"
}

// newFramesCmd creates the frames command, which exports the narrative
// animation as a numbered SVG frame sequence suitable for assembling into a
// video (e.g., with ffmpeg).
//
// The sequence runs from arming through the complete phase. Narrative timing
// comes from the loaded configuration.
func newFramesCmd() *cobra.Command {
	opts := framesOpts{fps: 20, variant: string(narrative.VariantBefore)}

	cmd := &cobra.Command{
		Use:   "frames [file]",
		Short: "Export the narrative animation as an SVG frame sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if opts.fps <= 0 {
				return fmt.Errorf("invalid fps: %d (must be positive)", opts.fps)
			}
			v := narrative.Variant(opts.variant)
			if v != narrative.VariantBefore && v != narrative.VariantAfter {
				return fmt.Errorf("invalid variant: %s (must be 'before' or 'after')", opts.variant)
			}
			if opts.width == 0 {
				opts.width = cfg.Render.Width
			}
			if opts.height == 0 {
				opts.height = cfg.Render.Height
			}
			return runFrames(cmd.Context(), args[0], v, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: <input>_frames)")
	cmd.Flags().IntVar(&opts.fps, "fps", opts.fps, "frames per second of the exported sequence")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height")
	cmd.Flags().StringVar(&opts.variant, "variant", opts.variant, "diagram variant: before (default), after")

	return cmd
}

// runFrames computes the layout once, then samples the narrative controller on
// a virtual clock and renders one SVG per sample until the run completes.
func runFrames(ctx context.Context, input string, variant narrative.Variant, opts *framesOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	backend, err := newCacheBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(backend, nil, logger)
	defer runner.Close()

	popts := pipeline.Options{
		Input:  input,
		Width:  opts.width,
		Height: opts.height,
		Logger: logger,
	}
	doc, g, dropped, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}
	if len(dropped) > 0 {
		logger.Warnf("Dropped %d dangling links", len(dropped))
	}
	geom, hit, err := runner.ComputeGeometryWithCacheInfo(ctx, g, popts)
	if err != nil {
		return err
	}
	if geom == nil {
		logger.Warnf("Viewport %gx%g too small, nothing rendered", opts.width, opts.height)
		return nil
	}
	logger.Infof("Layout %s", cacheBadge(hit))

	ctrl, err := narrative.New(cfg.NarrativeConfig())
	if err != nil {
		return err
	}
	defer ctrl.Deactivate()

	dir := opts.output
	if dir == "" {
		dir = basePath("", input) + "_frames"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	spin := newSpinner(ctx, fmt.Sprintf("Exporting frames to %s", dir))
	spin.Start()
	defer spin.Stop()

	// The controller samples purely in elapsed time, so the export runs on a
	// virtual clock instead of sleeping between frames.
	base := time.Unix(0, 0)
	step := time.Second / time.Duration(opts.fps)
	metricCount := len(summaryMetrics(g))
	ctrl.Arm(g.Fingerprint(), variant, g.LayerCount(), metricCount, base)

	n := 0
	for now := base; ; now = now.Add(step) {
		if err := ctx.Err(); err != nil {
			return err
		}
		st := ctrl.Sample(now)
		data := sankey.RenderSVG(geom,
			sankey.WithTitle(doc.Title),
			sankey.WithFrame(sankey.NarrativeFrame(st)),
		)
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.svg", n))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		n++
		if st.Complete {
			break
		}
	}

	spin.Stop()
	logger.Infof("Exported %d frames at %d fps to %s", n, opts.fps, dir)
	return nil
}
