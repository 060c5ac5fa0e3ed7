// Terminal particle field - renders the field into terminal cells.
//
// Usage: go run ./cmd/termfield [-config path] [-prefs path]
//
// Move the mouse to push particles, t toggles the theme, q or Esc quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/ambient/config"
	"github.com/pthm-cable/ambient/engine"
	"github.com/pthm-cable/ambient/renderer"
	"github.com/pthm-cable/ambient/renderer/termcanvas"
	"github.com/pthm-cable/ambient/theme"
)

// Field runs a particle field on a tcell screen.
type Field struct {
	screen tcell.Screen
	canvas *termcanvas.Canvas
	field  *engine.Field
	loop   *engine.Loop
	themes *theme.Manager
	fps    int
}

func NewField(cfg *config.Config, prefsPath string, seed int64) (*Field, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	root := theme.NewRoot()
	if prefsPath == "" {
		prefsPath = cfg.Theme.PrefsPath
	}
	themes := theme.NewManager(root, cfg.Theme.Attribute, prefsPath)
	if err := themes.Load(cfg.Theme.Default); err != nil {
		slog.Warn("theme preference not loaded", "error", err)
	}

	pals, err := renderer.ParsePalettes(cfg.Palettes)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	canvas := termcanvas.New(screen, pals.For(themes.Current() == theme.Dark).Trail)

	w, h := canvas.Size()
	field, err := engine.New(cfg, canvas,
		engine.WithSeed(seed),
		engine.WithThemeRoot(root),
		engine.WithViewport(w, h),
	)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	return &Field{
		screen: screen,
		canvas: canvas,
		field:  field,
		loop:   engine.NewLoop(field, 0),
		themes: themes,
		fps:    cfg.Screen.TargetFPS,
	}, nil
}

func (f *Field) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 't', 'T':
				if err := f.themes.Toggle(); err != nil {
					slog.Error("failed to save theme", "error", err)
				}
			}
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		f.field.OnPointerMove(
			float32(col*termcanvas.CellW+termcanvas.CellW/2),
			float32(row*termcanvas.CellH+termcanvas.CellH/2),
		)

	case *tcell.EventResize:
		cols, rows := f.screen.Size()
		f.field.OnResize(cols*termcanvas.CellW, rows*termcanvas.CellH)
		f.screen.Sync()
	}

	return true
}

func (f *Field) run() error {
	ticker := time.NewTicker(engine.IntervalFor(f.fps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := f.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !f.handleInput(ev) {
				return nil
			}

		case <-ticker.C:
			if !f.loop.Step() {
				return f.loop.Err()
			}
		}
	}
}

func (f *Field) cleanup() {
	f.loop.Stop()
	f.field.Close()
	f.screen.Fini()
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	prefsPath := flag.String("prefs", "", "Theme preference file (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	// Logs go to stderr; stdout belongs to the terminal screen
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	f, err := NewField(cfg, *prefsPath, rngSeed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "termfield: %v\n", err)
		os.Exit(1)
	}

	runErr := f.run()
	f.cleanup()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "termfield: %v\n", runErr)
		os.Exit(1)
	}
}
