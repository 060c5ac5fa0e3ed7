// Package rlcanvas implements renderer.Surface on a raylib render texture.
package rlcanvas

import (
	"errors"
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ambient/renderer"
)

// Canvas draws into an off-screen render texture so that previous frames
// persist underneath the fade rectangle. Present copies it to the window.
// All methods must be called on the raylib thread after InitWindow.
type Canvas struct {
	target rl.RenderTexture2D
	w, h   int
	clear  rl.Color
	loaded bool
}

// ErrTexture is returned when raylib cannot create the render texture,
// typically because there is no GL context yet.
var ErrTexture = errors.New("rlcanvas: render texture not created")

// Replaced in tests; raylib needs a window for the real ones.
var (
	loadRenderTexture   = rl.LoadRenderTexture
	unloadRenderTexture = rl.UnloadRenderTexture
	renderTextureValid  = rl.IsRenderTextureValid
)

// New creates a canvas of w x h pixels cleared to clear.
func New(w, h int, clear renderer.Paint) (*Canvas, error) {
	c := &Canvas{clear: toColor(clear)}
	if err := c.load(w, h); err != nil {
		return nil, err
	}
	return c, nil
}

// Resize reallocates the render texture. Like a browser canvas, the
// contents are discarded. If the new texture cannot be created the old
// one is kept.
func (c *Canvas) Resize(w, h int) {
	if err := c.load(w, h); err != nil {
		slog.Error("canvas resize failed", "width", w, "height", h, "error", err)
	}
}

func (c *Canvas) load(w, h int) error {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	target := loadRenderTexture(int32(w), int32(h))
	if !renderTextureValid(target) {
		return fmt.Errorf("%w: %dx%d", ErrTexture, w, h)
	}
	if c.loaded {
		unloadRenderTexture(c.target)
	}
	c.target = target
	c.w, c.h = w, h
	c.loaded = true

	rl.BeginTextureMode(c.target)
	rl.ClearBackground(c.clear)
	rl.EndTextureMode()
	return nil
}

func (c *Canvas) Size() (int, int) {
	return c.w, c.h
}

func (c *Canvas) BeginFrame() {
	rl.BeginTextureMode(c.target)
}

func (c *Canvas) EndFrame() {
	rl.EndTextureMode()
}

func (c *Canvas) Fade(p renderer.Paint) {
	c.clear = toColor(renderer.Paint{Color: p.Color, Alpha: 1})
	rl.DrawRectangle(0, 0, int32(c.w), int32(c.h), toColor(p))
}

// GlowCircle approximates a canvas shadow blur with a radial gradient
// fading from the glow colour to transparent, then draws the core.
func (c *Canvas) GlowCircle(x, y, radius, blur float32, fill, glow renderer.Paint) {
	halo := toColor(glow)
	edge := halo
	edge.A = 0
	rl.DrawCircleGradient(int32(x), int32(y), radius+blur, halo, edge)
	rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, toColor(fill))
}

func (c *Canvas) Line(x1, y1, x2, y2, width float32, p renderer.Paint) {
	rl.DrawLineEx(rl.Vector2{X: x1, Y: y1}, rl.Vector2{X: x2, Y: y2}, width, toColor(p))
}

// Present draws the canvas to the current framebuffer at the origin.
// Call between rl.BeginDrawing and rl.EndDrawing.
func (c *Canvas) Present() {
	c.PresentAt(0, 0)
}

// PresentAt draws the canvas with its top-left corner at (x, y).
func (c *Canvas) PresentAt(x, y float32) {
	// Render textures are stored upside down
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(c.w), Height: -float32(c.h)}
	rl.DrawTextureRec(c.target.Texture, src, rl.Vector2{X: x, Y: y}, rl.White)
}

// Export writes the canvas contents to a PNG file.
func (c *Canvas) Export(path string) error {
	img := rl.LoadImageFromTexture(c.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("exporting canvas to %s", path)
	}
	return nil
}

// Unload frees the render texture.
func (c *Canvas) Unload() {
	if c.loaded {
		unloadRenderTexture(c.target)
		c.loaded = false
	}
}

func toColor(p renderer.Paint) rl.Color {
	r, g, b, a := p.RGBA255()
	return rl.Color{R: r, G: g, B: b, A: a}
}
