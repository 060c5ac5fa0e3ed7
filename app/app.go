// Package app wires the particle field to a host: a raylib window or a
// headless run with telemetry output.
package app

import (
	"context"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ambient/config"
	"github.com/pthm-cable/ambient/engine"
	"github.com/pthm-cable/ambient/renderer"
	"github.com/pthm-cable/ambient/renderer/rlcanvas"
	"github.com/pthm-cable/ambient/telemetry"
	"github.com/pthm-cable/ambient/theme"
	"github.com/pthm-cable/ambient/ui"
)

// Options configures an App.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string // CSV and config snapshot; empty disables
	ExportDir      string // PNG exports; empty = working directory
	PrefsPath      string // theme preference file; empty = config value
	Headless       bool
	MaxFrames      int64 // 0 = unlimited
}

// App holds a field and the host state around it.
type App struct {
	cfg  *config.Config
	opts Options

	field *engine.Field
	loop  *engine.Loop

	root   *theme.Root
	themes *theme.Manager

	// Surfaces; exactly one is set
	canvas   *rlcanvas.Canvas
	recorder *renderer.Recorder

	palettes  renderer.Palettes
	hud       *ui.HUD
	perfPanel *ui.PerfPanel

	collector *telemetry.Collector
	output    *telemetry.OutputManager

	paused  bool
	touches int32 // touch points seen last frame
	showHUD bool
	done    bool

	screenWidth, screenHeight int
}

// NewWithOptions creates an app from the global config. Graphical apps must
// be created after rl.InitWindow.
func NewWithOptions(opts Options) (*App, error) {
	cfg := config.Cfg()

	a := &App{
		cfg:          cfg,
		opts:         opts,
		root:         theme.NewRoot(),
		screenWidth:  cfg.Screen.Width,
		screenHeight: cfg.Screen.Height,
	}

	prefs := opts.PrefsPath
	if prefs == "" {
		prefs = cfg.Theme.PrefsPath
	}
	a.themes = theme.NewManager(a.root, cfg.Theme.Attribute, prefs)
	if err := a.themes.Load(cfg.Theme.Default); err != nil {
		slog.Warn("theme preference not loaded", "error", err)
	}

	pals, err := renderer.ParsePalettes(cfg.Palettes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrInvalidConfig, err)
	}
	a.palettes = pals

	var surface renderer.Surface
	if opts.Headless {
		a.recorder = renderer.NewRecorder(a.screenWidth, a.screenHeight, false)
		surface = a.recorder
	} else {
		a.screenWidth = rl.GetScreenWidth()
		a.screenHeight = rl.GetScreenHeight()
		trail := pals.For(a.themes.Current() == theme.Dark).Trail
		a.canvas, err = rlcanvas.New(a.screenWidth, a.screenHeight, renderer.Paint{Color: trail, Alpha: 1})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", engine.ErrNoSurface, err)
		}
		surface = a.canvas
		a.hud = ui.NewHUD()
		a.perfPanel = ui.NewPerfPanel(int32(a.screenWidth)-260, 10)
		a.showHUD = false
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	a.collector = telemetry.NewCollector(statsWindow, cfg.Derived.FrameDT)

	a.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := a.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	a.field, err = engine.New(cfg, surface,
		engine.WithSeed(opts.Seed),
		engine.WithThemeRoot(a.root),
		engine.WithViewport(a.screenWidth, a.screenHeight),
		engine.WithFrameHook(a.onFrame),
	)
	if err != nil {
		a.output.Close()
		if a.canvas != nil {
			a.canvas.Unload()
		}
		return nil, err
	}

	// The window host paces frames with rl.SetTargetFPS; headless runs flat out.
	a.loop = engine.NewLoop(a.field, 0)

	slog.Info("field ready",
		"particles", a.field.Stats().Particles,
		"viewport", fmt.Sprintf("%dx%d", a.screenWidth, a.screenHeight),
		"theme", a.themes.Current(),
		"noise", cfg.Flow.Noise,
		"seed", opts.Seed,
	)
	return a, nil
}

// Update handles input and advances one frame unless paused.
func (a *App) Update() {
	a.handleInput()

	if a.paused || a.done {
		return
	}
	if !a.loop.Step() {
		a.done = true
	}
}

// Draw presents the canvas and the overlay.
func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	a.canvas.Present()

	if a.showHUD {
		stats := a.field.Stats()
		p := a.field.Pointer()
		a.hud.Draw(ui.HUDData{
			Title:        a.cfg.Screen.Title,
			Particles:    stats.Particles,
			Connections:  stats.Connections,
			Repelled:     stats.Repelled,
			Frame:        stats.Frame,
			FieldTime:    stats.Time,
			FPS:          rl.GetFPS(),
			Paused:       a.paused,
			Theme:        a.themes.Current(),
			PointerX:     p.X,
			PointerY:     p.Y,
			PointerOn:    p.Active,
			ScreenWidth:  int32(a.screenWidth),
			ScreenHeight: int32(a.screenHeight),
		}, a.palettes.For(stats.Dark))
		a.perfPanel.Draw(a.field.Perf().Stats())
		a.hud.DrawControls(int32(a.screenHeight), "T theme | D debug | Space pause | S export PNG | F11 fullscreen")
	}

	rl.EndDrawing()
	a.field.Perf().RecordPresent()
}

// RunHeadless steps frames until ctx is done, MaxFrames is reached or a
// frame fails.
func (a *App) RunHeadless(ctx context.Context) error {
	slog.Info("starting headless run",
		"seed", a.opts.Seed,
		"max_frames", a.opts.MaxFrames,
		"stats_window", a.collector.WindowDurationFrames(),
	)
	err := a.loop.Start(ctx)
	slog.Info("headless run finished",
		"frames", a.loop.Frames(),
		"fades", a.recorder.Totals[renderer.OpFade],
		"circles", a.recorder.Totals[renderer.OpCircle],
		"lines", a.recorder.Totals[renderer.OpLine],
	)
	return err
}

// Done reports whether the frame loop has ended.
func (a *App) Done() bool {
	return a.done || a.loop.Stopped()
}

// Err returns the frame failure that ended the loop, if any.
func (a *App) Err() error {
	return a.loop.Err()
}

// Frames returns the number of frames drawn.
func (a *App) Frames() int64 {
	return a.loop.Frames()
}

// Field returns the underlying particle field.
func (a *App) Field() *engine.Field {
	return a.field
}

// Unload releases the field, output files and GPU resources.
func (a *App) Unload() {
	a.loop.Stop()
	a.field.Close()
	if err := a.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if a.canvas != nil {
		a.canvas.Unload()
	}
}
