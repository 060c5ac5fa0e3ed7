// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all particle field configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Flow      FlowConfig      `yaml:"flow"`
	Pointer   PointerConfig   `yaml:"pointer"`
	Render    RenderConfig    `yaml:"render"`
	Palettes  PalettesConfig  `yaml:"palettes"`
	Theme     ThemeConfig     `yaml:"theme"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// FieldConfig holds the particle population and motion parameters.
type FieldConfig struct {
	ParticleCount      int     `yaml:"particle_count"`
	NarrowWidth        int     `yaml:"narrow_width"`  // Viewports narrower than this get fewer particles
	NarrowFactor       float64 `yaml:"narrow_factor"` // Population multiplier for narrow viewports
	ConnectionDistance float64 `yaml:"connection_distance"`
	InitialSpeed       float64 `yaml:"initial_speed"` // Initial velocity components are drawn from [-v, v)
	Damping            float64 `yaml:"damping"`    // Per-frame velocity multiplier
	WrapMargin         float64 `yaml:"wrap_margin"`
	TimeStep           float64 `yaml:"time_step"` // Field time advanced per frame
}

// FlowConfig holds the autonomous drift parameters.
type FlowConfig struct {
	Noise     string  `yaml:"noise"`      // "trig" or "simplex"
	Speed     float64 `yaml:"speed"`      // Heading-aligned push per frame
	NoiseGain float64 `yaml:"noise_gain"` // Noise contribution per frame
	Seed      int64   `yaml:"seed"`       // Simplex permutation seed
}

// PointerConfig holds pointer interaction parameters.
type PointerConfig struct {
	Radius      float64 `yaml:"radius"`
	Force       float64 `yaml:"force"`
	PushScale   float64 `yaml:"push_scale"`
	SwirlScale  float64 `yaml:"swirl_scale"`
	MinDistance float64 `yaml:"min_distance"` // Repulsion is skipped below this distance
	SentinelX   float64 `yaml:"sentinel_x"`
	SentinelY   float64 `yaml:"sentinel_y"`
}

// RenderConfig holds per-frame drawing parameters.
type RenderConfig struct {
	TrailAlpha      float64 `yaml:"trail_alpha"`
	AlphaBase       float64 `yaml:"alpha_base"`
	AlphaGain       float64 `yaml:"alpha_gain"`
	SizeGain        float64 `yaml:"size_gain"`
	GlowBase        float64 `yaml:"glow_base"`
	GlowGain        float64 `yaml:"glow_gain"`
	GlowAlpha       float64 `yaml:"glow_alpha"`
	ConnectionAlpha float64 `yaml:"connection_alpha"`
	LineWidth       float64 `yaml:"line_width"`
}

// PaletteConfig holds the colours used under one theme.
type PaletteConfig struct {
	Particles []string `yaml:"particles"` // Hex colours indexed by particle colour index
	Trail     string   `yaml:"trail"`     // Hex colour of the fade rectangle
}

// PalettesConfig holds the light and dark palettes.
type PalettesConfig struct {
	Light PaletteConfig `yaml:"light"`
	Dark  PaletteConfig `yaml:"dark"`
}

// ThemeConfig holds theme attribute and preference settings.
type ThemeConfig struct {
	Attribute string `yaml:"attribute"`
	Default   string `yaml:"default"`
	PrefsPath string `yaml:"prefs_path"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ConnectionDistSq float32 // Field.ConnectionDistance squared
	RadiusSq         float32 // Pointer.Radius squared
	FrameDT          float64 // Seconds per frame at the target FPS
}

// ErrInvalid is returned by Validate for unusable configurations.
var ErrInvalid = errors.New("invalid config")

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate reports the first parameter that would make the field unusable.
func (c *Config) Validate() error {
	switch {
	case c.Field.ParticleCount < 0:
		return fmt.Errorf("%w: field.particle_count must be >= 0, got %d", ErrInvalid, c.Field.ParticleCount)
	case c.Field.NarrowFactor < 0 || c.Field.NarrowFactor > 1:
		return fmt.Errorf("%w: field.narrow_factor must be in [0,1], got %v", ErrInvalid, c.Field.NarrowFactor)
	case c.Field.ConnectionDistance <= 0:
		return fmt.Errorf("%w: field.connection_distance must be > 0", ErrInvalid)
	case c.Field.Damping < 0 || c.Field.Damping > 1:
		return fmt.Errorf("%w: field.damping must be in [0,1], got %v", ErrInvalid, c.Field.Damping)
	case c.Pointer.Radius <= 0:
		return fmt.Errorf("%w: pointer.radius must be > 0", ErrInvalid)
	case c.Flow.Noise != "trig" && c.Flow.Noise != "simplex":
		return fmt.Errorf("%w: flow.noise must be trig or simplex, got %q", ErrInvalid, c.Flow.Noise)
	case len(c.Palettes.Light.Particles) == 0 || len(c.Palettes.Dark.Particles) == 0:
		return fmt.Errorf("%w: palettes need at least one particle colour", ErrInvalid)
	case c.Screen.TargetFPS <= 0:
		return fmt.Errorf("%w: screen.target_fps must be > 0", ErrInvalid)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after editing fields in place.
func (c *Config) ComputeDerived() {
	d := float32(c.Field.ConnectionDistance)
	c.Derived.ConnectionDistSq = d * d
	r := float32(c.Pointer.Radius)
	c.Derived.RadiusSq = r * r
	c.Derived.FrameDT = 1.0 / float64(c.Screen.TargetFPS)
}

// PopulationFor returns the particle count for a viewport of the given width.
func (c *Config) PopulationFor(viewportWidth int) int {
	if viewportWidth < c.Field.NarrowWidth {
		return int(float64(c.Field.ParticleCount) * c.Field.NarrowFactor)
	}
	return c.Field.ParticleCount
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
