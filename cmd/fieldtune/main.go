// Field tuning tool - live particle field preview with parameter sliders.
//
// Usage: go run ./cmd/fieldtune -out tuned.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ambient/config"
	"github.com/pthm-cable/ambient/engine"
	"github.com/pthm-cable/ambient/renderer"
	"github.com/pthm-cable/ambient/renderer/rlcanvas"
)

const (
	windowWidth   = 1280
	windowHeight  = 720
	previewWidth  = 860
	previewHeight = 700
	panelX        = previewWidth + 20
	panelWidth    = windowWidth - panelX - 10
)

// TuneParams holds the parameters exposed as sliders.
type TuneParams struct {
	FlowSpeed          float32
	NoiseGain          float32
	Force              float32
	Radius             float32
	Damping            float32
	ConnectionDistance float32
}

func paramsFromConfig(cfg *config.Config) TuneParams {
	return TuneParams{
		FlowSpeed:          float32(cfg.Flow.Speed),
		NoiseGain:          float32(cfg.Flow.NoiseGain),
		Force:              float32(cfg.Pointer.Force),
		Radius:             float32(cfg.Pointer.Radius),
		Damping:            float32(cfg.Field.Damping),
		ConnectionDistance: float32(cfg.Field.ConnectionDistance),
	}
}

func (p TuneParams) apply(cfg *config.Config) {
	cfg.Flow.Speed = float64(p.FlowSpeed)
	cfg.Flow.NoiseGain = float64(p.NoiseGain)
	cfg.Pointer.Force = float64(p.Force)
	cfg.Pointer.Radius = float64(p.Radius)
	cfg.Field.Damping = float64(p.Damping)
	cfg.Field.ConnectionDistance = float64(p.ConnectionDistance)
	cfg.ComputeDerived()
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "fieldtune.yaml", "Where Save writes the tuned config")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	defaults := paramsFromConfig(cfg)
	params := defaults

	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(windowWidth, windowHeight, "Field Tuning")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	pals, err := renderer.ParsePalettes(cfg.Palettes)
	if err != nil {
		slog.Error("bad palettes", "error", err)
		os.Exit(1)
	}

	dark := false
	canvas, err := rlcanvas.New(previewWidth, previewHeight, renderer.Paint{Color: pals.Light.Trail, Alpha: 1})
	if err != nil {
		slog.Error("failed to create preview canvas", "error", err)
		os.Exit(1)
	}
	defer canvas.Unload()

	params.apply(cfg)
	field, err := engine.New(cfg, canvas, engine.WithSeed(*seed), engine.WithViewport(previewWidth, previewHeight))
	if err != nil {
		slog.Error("failed to create field", "error", err)
		os.Exit(1)
	}
	defer field.Close()
	loop := engine.NewLoop(field, 0)

	// Slider edits are pushed into the running field so particles keep moving
	retune := func() {
		params.apply(cfg)
		if err := field.Retune(cfg); err != nil {
			slog.Error("failed to retune field", "error", err)
		}
	}

	paused := false
	status := ""

	for !rl.WindowShouldClose() {
		// Pointer inside the preview drives the field
		mouse := rl.GetMousePosition()
		if mouse.X >= 10 && mouse.X < 10+previewWidth && mouse.Y >= 10 && mouse.Y < 10+previewHeight {
			field.OnPointerMove(mouse.X-10, mouse.Y-10)
		}

		if !paused {
			loop.Step()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview, offset by the margin
		canvas.PresentAt(10, 10)
		rl.DrawRectangleLines(10, 10, previewWidth, previewHeight, rl.DarkGray)

		// Control panel
		y := float32(10)
		rl.DrawText("Field Parameters", panelX, int32(y), 20, rl.DarkGray)
		y += 35

		changed := false
		changed = slider(&y, "Flow speed", &params.FlowSpeed, 0, 0.1, "%.3f") || changed
		changed = slider(&y, "Noise gain", &params.NoiseGain, 0, 0.2, "%.3f") || changed
		changed = slider(&y, "Pointer force", &params.Force, 0, 50, "%.1f") || changed
		changed = slider(&y, "Pointer radius", &params.Radius, 50, 600, "%.0f") || changed
		changed = slider(&y, "Damping", &params.Damping, 0.8, 1.0, "%.3f") || changed
		changed = slider(&y, "Connection distance", &params.ConnectionDistance, 40, 250, "%.0f") || changed
		if changed {
			retune()
		}

		// Separator
		rl.DrawLine(panelX, int32(y), panelX+panelWidth, int32(y), rl.LightGray)
		y += 15

		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, toggleText(dark, "Light theme", "Dark theme")) {
			dark = !dark
			field.SetDark(dark)
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		y += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 120, Height: 30}, "Noise: "+cfg.Flow.Noise) {
			if cfg.Flow.Noise == "trig" {
				cfg.Flow.Noise = "simplex"
			} else {
				cfg.Flow.Noise = "trig"
			}
			retune()
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: y, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			retune()
		}
		y += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: y, Width: 250, Height: 30}, "Save YAML") {
			if err := cfg.WriteYAML(*outPath); err != nil {
				status = err.Error()
			} else {
				status = "Saved " + *outPath
			}
		}
		y += 45

		// Stats
		stats := field.Stats()
		rl.DrawText(fmt.Sprintf("Particles: %d  Connections: %d", stats.Particles, stats.Connections), panelX, int32(y), 14, rl.DarkGray)
		y += 18
		rl.DrawText(fmt.Sprintf("Repelled: %d  Time: %.2f  FPS: %d", stats.Repelled, stats.Time, rl.GetFPS()), panelX, int32(y), 14, rl.DarkGray)
		y += 24

		if status != "" {
			rl.DrawText(status, panelX, int32(y), 12, rl.Gray)
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", panelX, windowHeight-30, 12, rl.Gray)
		if rl.IsKeyPressed(rl.KeyC) {
			if text, err := tunedYAML(cfg); err == nil {
				rl.SetClipboardText(text)
				status = "Copied YAML"
			}
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider bar and reports whether the value changed.
func slider(y *float32, label string, value *float32, lo, hi float32, format string) bool {
	rl.DrawText(label, panelX, int32(*y), 14, rl.Gray)
	*y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: *y, Width: panelWidth - 80, Height: 20},
		"", "",
		*value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, *value), int32(panelX+panelWidth-70), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	if next != *value {
		*value = next
		return true
	}
	return false
}

// tunedYAML returns the tuned sections as YAML.
func tunedYAML(cfg *config.Config) (string, error) {
	out, err := yaml.Marshal(struct {
		Field   config.FieldConfig   `yaml:"field"`
		Flow    config.FlowConfig    `yaml:"flow"`
		Pointer config.PointerConfig `yaml:"pointer"`
	}{cfg.Field, cfg.Flow, cfg.Pointer})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
