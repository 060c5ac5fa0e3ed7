package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard, mouse and touch input.
func (a *App) handleInput() {
	// Window resize propagation
	a.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		a.paused = !a.paused
	}

	// Debug overlay toggle
	if rl.IsKeyPressed(rl.KeyD) {
		a.showHUD = !a.showHUD
	}

	if rl.IsKeyPressed(rl.KeyT) {
		if err := a.themes.Toggle(); err != nil {
			slog.Error("failed to save theme", "error", err)
		}
	}

	if rl.IsKeyPressed(rl.KeyS) {
		a.exportPNG()
	}

	a.handlePointer()
}

// handlePointer forwards mouse movement and new touches to the field.
func (a *App) handlePointer() {
	count := rl.GetTouchPointCount()
	if count > 0 {
		if a.touchStarted(count) {
			p := rl.GetTouchPosition(0)
			a.field.OnPointerMove(p.X, p.Y)
		}
		return
	}
	a.touchStarted(0)

	delta := rl.GetMouseDelta()
	if delta.X == 0 && delta.Y == 0 {
		return
	}
	p := rl.GetMousePosition()
	a.field.OnPointerMove(p.X, p.Y)
}

// touchStarted records the touch point count and reports whether a touch
// began this frame. A held touch does not move the pointer again.
func (a *App) touchStarted(count int32) bool {
	began := count > 0 && a.touches == 0
	a.touches = count
	return began
}

// handleResize checks for window resize and propagates new dimensions.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := rl.GetScreenWidth()
	h := rl.GetScreenHeight()
	if w == a.screenWidth && h == a.screenHeight {
		return
	}
	a.screenWidth = w
	a.screenHeight = h

	a.field.OnResize(w, h)
	if a.perfPanel != nil {
		a.perfPanel.SetPosition(int32(w)-260, 10)
	}
}

// exportPNG writes the current canvas to a numbered PNG file.
func (a *App) exportPNG() {
	path := filepath.Join(a.opts.ExportDir, fmt.Sprintf("field-%06d.png", a.field.Stats().Frame))
	if err := a.canvas.Export(path); err != nil {
		slog.Error("export failed", "error", err)
		return
	}
	slog.Info("exported frame", "path", path)
}
