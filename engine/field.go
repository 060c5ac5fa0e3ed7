// Package engine runs the ambient particle field: it owns the particle
// population, pointer and theme state, and draws one frame at a time onto a
// renderer.Surface.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ambient/components"
	"github.com/pthm-cable/ambient/config"
	"github.com/pthm-cable/ambient/renderer"
	"github.com/pthm-cable/ambient/systems"
	"github.com/pthm-cable/ambient/telemetry"
	"github.com/pthm-cable/ambient/theme"
)

// FrameStats describes the most recent frame.
type FrameStats struct {
	Frame       int64
	Time        float64 // field time after the frame
	Particles   int
	Connections int
	Repelled    int // particles the pointer acted on
	Dark        bool
}

// Sample converts the stats into a telemetry frame sample.
func (s FrameStats) Sample() telemetry.FrameSample {
	return telemetry.FrameSample{
		Frame:       s.Frame,
		FieldTime:   s.Time,
		Particles:   s.Particles,
		Connections: s.Connections,
		Repelled:    s.Repelled,
		Dark:        s.Dark,
	}
}

// FrameHook runs after every frame, outside the field lock.
type FrameHook func(FrameStats)

// Particle is a copy of one particle's state.
type Particle struct {
	X, Y       float32
	VX, VY     float32
	Angle      float32
	Spin       float32
	Size       float32
	BaseSize   float32
	Brightness float32
	Seed       float32
	ColorIndex uint8
}

// Field is one particle field attached to one surface.
// Its methods are safe for concurrent use.
type Field struct {
	mu sync.Mutex

	cfg      *config.Config
	surface  renderer.Surface
	palettes renderer.Palettes
	rng      *rand.Rand

	world  *ecs.World
	mapper *ecs.Map4[components.Position, components.Velocity, components.Heading, components.Glow]
	filter *ecs.Filter4[components.Position, components.Velocity, components.Heading, components.Glow]

	motion      *systems.MotionSystem
	connections *systems.ConnectionSystem
	painter     *renderer.ParticleRenderer

	pointer systems.Pointer
	dark    bool

	root      *theme.Root
	attribute string
	unobserve func()

	time  float64
	frame int64
	count int
	stats FrameStats

	perf    *telemetry.PerfCollector
	hooks   []FrameHook
	looping bool
}

type options struct {
	rng           *rand.Rand
	root          *theme.Root
	width, height int
	perf          *telemetry.PerfCollector
	hooks         []FrameHook
}

// Option configures a Field.
type Option func(*options)

// WithRand sets the random source used to seed particles.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed seeds particles from a new source with the given seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithThemeRoot makes the field follow the theme attribute on root.
func WithThemeRoot(root *theme.Root) Option {
	return func(o *options) { o.root = root }
}

// WithViewport sets the initial viewport size. Defaults to the configured
// screen size.
func WithViewport(w, h int) Option {
	return func(o *options) { o.width, o.height = w, h }
}

// WithPerf records frame phase timing into pc.
func WithPerf(pc *telemetry.PerfCollector) Option {
	return func(o *options) { o.perf = pc }
}

// WithFrameHook registers fn to run after every frame.
func WithFrameHook(fn FrameHook) Option {
	return func(o *options) { o.hooks = append(o.hooks, fn) }
}

// New builds a field: it sizes surface to the viewport, seeds the particle
// population and reads the current theme. It does not start drawing.
func New(cfg *config.Config, surface renderer.Surface, opts ...Option) (*Field, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	o := options{width: cfg.Screen.Width, height: cfg.Screen.Height}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(cfg.Flow.Seed))
	}
	if o.perf == nil {
		o.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	}

	palettes, err := renderer.ParsePalettes(cfg.Palettes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	noise, err := systems.NewFlowNoise(cfg.Flow.Noise, cfg.Flow.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	world := ecs.NewWorld()
	f := &Field{
		cfg:      cfg,
		surface:  surface,
		palettes: palettes,
		rng:      o.rng,
		world:    world,
		mapper:   ecs.NewMap4[components.Position, components.Velocity, components.Heading, components.Glow](world),
		filter:   ecs.NewFilter4[components.Position, components.Velocity, components.Heading, components.Glow](world),

		motion:      systems.NewMotionSystem(world, noise, systems.MotionParamsFromConfig(cfg)),
		connections: systems.NewConnectionSystem(world, cfg.Derived.ConnectionDistSq),
		painter:     renderer.NewParticleRenderer(world, renderer.StyleFromConfig(cfg)),

		pointer: systems.Pointer{
			X: float32(cfg.Pointer.SentinelX),
			Y: float32(cfg.Pointer.SentinelY),
		},

		attribute: cfg.Theme.Attribute,
		perf:      o.perf,
		hooks:     o.hooks,
	}
	if f.attribute == "" {
		f.attribute = theme.DefaultAttribute
	}

	surface.Resize(o.width, o.height)
	f.spawnParticles(cfg.PopulationFor(o.width), float32(o.width), float32(o.height))

	if o.root != nil {
		f.root = o.root
		f.dark = o.root.Attribute(f.attribute) == theme.Dark
		f.unobserve = o.root.Observe(func(_, value string) {
			f.SetDark(value == theme.Dark)
		}, f.attribute)
	}

	f.stats = FrameStats{Particles: f.count, Dark: f.dark}
	return f, nil
}

// Retune applies edited flow, pointer, connection and render values
// from cfg to the running field. Particles, time and theme are kept.
// Call cfg.ComputeDerived first.
func (f *Field) Retune(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	noise, err := systems.NewFlowNoise(cfg.Flow.Noise, cfg.Flow.Seed)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.motion.SetNoise(noise)
	f.motion.SetParams(systems.MotionParamsFromConfig(cfg))
	f.connections.SetDistSq(cfg.Derived.ConnectionDistSq)
	f.painter.SetStyle(renderer.StyleFromConfig(cfg))
	return nil
}

// OnResize resizes the surface. The particle population is kept.
func (f *Field) OnResize(w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.surface.Resize(w, h)
}

// OnPointerMove moves the pointer. Touch input maps to the same call.
func (f *Field) OnPointerMove(x, y float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pointer.X = x
	f.pointer.Y = y
	f.pointer.Active = true
}

// OnThemeChange re-reads the theme attribute from the attached root.
func (f *Field) OnThemeChange() {
	if f.root == nil {
		return
	}
	f.SetDark(f.root.Attribute(f.attribute) == theme.Dark)
}

// SetDark selects the dark or light palette for subsequent frames.
func (f *Field) SetDark(dark bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dark = dark
}

// Dark reports whether the dark palette is active.
func (f *Field) Dark() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dark
}

// Pointer returns the current pointer state.
func (f *Field) Pointer() systems.Pointer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pointer
}

// Frame draws one frame: fade, advance time, move and draw particles, then
// draw connections.
func (f *Field) Frame() FrameStats {
	stats, hooks := f.step()
	for _, fn := range hooks {
		fn(stats)
	}
	return stats
}

func (f *Field) step() (FrameStats, []FrameHook) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.perf.StartFrame()
	defer f.perf.EndFrame()

	f.surface.BeginFrame()
	defer f.surface.EndFrame()

	pal := f.palettes.For(f.dark)

	f.perf.StartPhase(telemetry.PhaseFade)
	f.painter.Fade(f.surface, pal)

	f.perf.StartPhase(telemetry.PhaseMotion)
	f.time += f.cfg.Field.TimeStep
	w, h := f.surface.Size()
	repelled := f.motion.Update(f.time, f.pointer, systems.Bounds{Width: float32(w), Height: float32(h)})

	f.perf.StartPhase(telemetry.PhaseDraw)
	f.painter.DrawParticles(f.surface, pal)

	f.perf.StartPhase(telemetry.PhaseConnections)
	conns := f.connections.Update()
	f.painter.DrawConnections(f.surface, pal, conns)

	f.frame++
	f.stats = FrameStats{
		Frame:       f.frame,
		Time:        f.time,
		Particles:   f.count,
		Connections: len(conns),
		Repelled:    repelled,
		Dark:        f.dark,
	}
	return f.stats, f.hooks
}

// Stats returns the stats of the last frame.
func (f *Field) Stats() FrameStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// Time returns the elapsed field time.
func (f *Field) Time() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.time
}

// Perf returns the frame timing collector.
func (f *Field) Perf() *telemetry.PerfCollector {
	return f.perf
}

// Particles returns a copy of every particle's state.
func (f *Field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Particle, 0, f.count)
	query := f.filter.Query()
	for query.Next() {
		pos, vel, head, glow := query.Get()
		out = append(out, Particle{
			X: pos.X, Y: pos.Y,
			VX: vel.X, VY: vel.Y,
			Angle:      head.Angle,
			Spin:       head.Spin,
			Size:       glow.Size,
			BaseSize:   glow.BaseSize,
			Brightness: glow.Brightness,
			Seed:       glow.Seed,
			ColorIndex: glow.ColorIndex,
		})
	}
	return out
}

// Samples returns per-particle speed and brightness for window statistics.
func (f *Field) Samples() (speeds, brightness []float64) {
	ps := f.Particles()
	speeds = make([]float64, len(ps))
	brightness = make([]float64, len(ps))
	for i, p := range ps {
		speeds[i] = math.Hypot(float64(p.VX), float64(p.VY))
		brightness[i] = float64(p.Brightness)
	}
	return speeds, brightness
}

// claim marks the field as driven by a running loop. It reports false if
// another loop already holds it.
func (f *Field) claim() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.looping {
		return false
	}
	f.looping = true
	return true
}

func (f *Field) release() {
	f.mu.Lock()
	f.looping = false
	f.mu.Unlock()
}

// Close detaches the field from its theme root.
func (f *Field) Close() {
	f.mu.Lock()
	unobserve := f.unobserve
	f.unobserve = nil
	f.mu.Unlock()
	if unobserve != nil {
		unobserve()
	}
}
