package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ambient/app"
	"github.com/pthm-cable/ambient/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	exportDir := flag.String("export-dir", "", "Directory for PNG exports (S key)")
	prefsPath := flag.String("prefs", "", "Theme preference file (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := app.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		ExportDir:      *exportDir,
		PrefsPath:      *prefsPath,
		Headless:       *headless,
		MaxFrames:      *maxFrames,
	}

	if *headless {
		// Headless mode - no raylib window, frames run back to back
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		a, err := app.NewWithOptions(opts)
		if err != nil {
			slog.Error("failed to initialize field", "error", err)
			os.Exit(1)
		}
		defer a.Unload()

		if err := a.RunHeadless(ctx); err != nil {
			slog.Error("headless run failed", "error", err)
			a.Unload()
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	a, err := app.NewWithOptions(opts)
	if err != nil {
		slog.Error("failed to initialize field", "error", err)
		rl.CloseWindow()
		os.Exit(1)
	}
	defer a.Unload()

	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()

		// A failed frame leaves the last image up until the window closes
		if a.Done() && a.Err() == nil {
			break
		}
	}

	if err := a.Err(); err != nil {
		slog.Error("field stopped", "error", err)
	}
}
