// Field snapshot tool - runs the particle field off-screen and writes the
// canvas to a PNG file for inspection.
//
// Usage: go run ./cmd/fieldshot -frames 300 -theme dark -out field.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ambient/config"
	"github.com/pthm-cable/ambient/engine"
	"github.com/pthm-cable/ambient/renderer"
	"github.com/pthm-cable/ambient/renderer/rlcanvas"
	"github.com/pthm-cable/ambient/theme"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "field.png", "Output PNG path")
	width := flag.Int("width", 1000, "Render width")
	height := flag.Int("height", 800, "Render height")
	frames := flag.Int("frames", 300, "Frames to run before the snapshot")
	themeName := flag.String("theme", theme.Light, "Theme: light or dark")
	seed := flag.Int64("seed", 1, "RNG seed")
	pointerX := flag.Float64("pointer-x", -1, "Pointer X (negative = no pointer)")
	pointerY := flag.Float64("pointer-y", -1, "Pointer Y")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Field Snapshot")
	defer rl.CloseWindow()

	pals, err := renderer.ParsePalettes(cfg.Palettes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad palettes: %v\n", err)
		os.Exit(1)
	}
	dark := *themeName == theme.Dark

	canvas, err := rlcanvas.New(*width, *height, renderer.Paint{Color: pals.For(dark).Trail, Alpha: 1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create canvas: %v\n", err)
		os.Exit(1)
	}
	defer canvas.Unload()

	field, err := engine.New(cfg, canvas, engine.WithSeed(*seed), engine.WithViewport(*width, *height))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create field: %v\n", err)
		os.Exit(1)
	}
	defer field.Close()
	field.SetDark(dark)

	if *pointerX >= 0 {
		field.OnPointerMove(float32(*pointerX), float32(*pointerY))
	}

	loop := engine.NewLoop(field, 0)
	for i := 0; i < *frames; i++ {
		if !loop.Step() {
			fmt.Fprintf(os.Stderr, "Frame %d failed: %v\n", i+1, loop.Err())
			os.Exit(1)
		}
	}

	if err := canvas.Export(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export image: %v\n", err)
		os.Exit(1)
	}

	stats := field.Stats()
	fmt.Printf("Field rendered to: %s (%dx%d, %d frames, %d particles, %d connections)\n",
		*outPath, *width, *height, stats.Frame, stats.Particles, stats.Connections)
}
