// Package config loads TOML configuration for the viashift CLI: animation
// timings, viewport and render defaults, and cache backend selection.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/heynickashwin-oss/viashift/pkg/flow/narrative"
	"github.com/heynickashwin-oss/viashift/pkg/flow/transition"
)

// ErrInvalidConfig indicates a configuration file that parsed but cannot
// be used.
var ErrInvalidConfig = errors.New("invalid config")

// Duration decodes Go duration strings ("900ms", "2.4s") from TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Narrative configures the phase controller timings.
type Narrative struct {
	LayerDraw         Duration `toml:"layer_draw"`
	LayerStagger      Duration `toml:"layer_stagger"`
	Bleed             Duration `toml:"bleed"`
	BleedPulseCycles  int      `toml:"bleed_pulse_cycles"`
	MetricRevealDelay Duration `toml:"metric_reveal_delay"`
	ReadyHold         Duration `toml:"ready_hold"`
}

// Transition configures the forge sequence timings.
type Transition struct {
	Anticipation Duration `toml:"anticipation"`
	Shift        Duration `toml:"shift"`
	PerLayer     Duration `toml:"per_layer"`
}

// Render configures output defaults.
type Render struct {
	Format string  `toml:"format"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Scale  float64 `toml:"scale"`
}

// CacheSection selects and configures the cache backend.
type CacheSection struct {
	// Backend is "file", "redis" or "none".
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	URL     string   `toml:"url"`
	TTL     Duration `toml:"ttl"`
}

// Config is the root of the TOML file.
type Config struct {
	Narrative  Narrative    `toml:"narrative"`
	Transition Transition   `toml:"transition"`
	Render     Render       `toml:"render"`
	Cache      CacheSection `toml:"cache"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	n := narrative.DefaultConfig()
	tr := transition.DefaultConfig()
	return Config{
		Narrative: Narrative{
			LayerDraw:         Duration(n.LayerDraw),
			LayerStagger:      Duration(n.LayerStagger),
			Bleed:             Duration(n.Bleed),
			BleedPulseCycles:  n.BleedPulseCycles,
			MetricRevealDelay: Duration(n.MetricRevealDelay),
			ReadyHold:         Duration(n.ReadyHold),
		},
		Transition: Transition{
			Anticipation: Duration(tr.Anticipation),
			Shift:        Duration(tr.Shift),
			PerLayer:     Duration(tr.PerLayer),
		},
		Render: Render{
			Format: "svg",
			Width:  1200,
			Height: 700,
			Scale:  1,
		},
		Cache: CacheSection{
			Backend: "file",
			Dir:     defaultCacheDir(),
			TTL:     Duration(24 * time.Hour),
		},
	}
}

// Load reads path and merges it over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency beyond what the controllers
// validate themselves.
func (c Config) Validate() error {
	if err := c.NarrativeConfig().Validate(); err != nil {
		return err
	}
	if err := c.TransitionConfig().Validate(); err != nil {
		return err
	}
	switch c.Render.Format {
	case "svg", "png", "json", "dot":
	default:
		return fmt.Errorf("%w: unknown render format %q", ErrInvalidConfig, c.Render.Format)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("%w: render size must be positive, got %gx%g", ErrInvalidConfig, c.Render.Width, c.Render.Height)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("%w: render scale must be positive, got %g", ErrInvalidConfig, c.Render.Scale)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.URL == "" {
		return fmt.Errorf("%w: redis cache backend needs a url", ErrInvalidConfig)
	}
	return nil
}

// NarrativeConfig converts the narrative section to the controller's
// config type.
func (c Config) NarrativeConfig() narrative.Config {
	return narrative.Config{
		LayerDraw:         c.Narrative.LayerDraw.Std(),
		LayerStagger:      c.Narrative.LayerStagger.Std(),
		Bleed:             c.Narrative.Bleed.Std(),
		BleedPulseCycles:  c.Narrative.BleedPulseCycles,
		MetricRevealDelay: c.Narrative.MetricRevealDelay.Std(),
		ReadyHold:         c.Narrative.ReadyHold.Std(),
	}
}

// TransitionConfig converts the transition section to the controller's
// config type.
func (c Config) TransitionConfig() transition.Config {
	return transition.Config{
		Anticipation: c.Transition.Anticipation.Std(),
		Shift:        c.Transition.Shift.Std(),
		PerLayer:     c.Transition.PerLayer.Std(),
	}
}

// defaultCacheDir is ~/.viashift/cache, falling back to a temp dir when
// the home directory is unknown.
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir() + "/viashift-cache"
	}
	return home + "/.viashift/cache"
}
