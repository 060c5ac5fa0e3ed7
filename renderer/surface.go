// Package renderer draws the particle field onto an abstract 2D surface.
package renderer

import "github.com/lucasb-eyer/go-colorful"

// Paint is a colour with straight (non-premultiplied) alpha in [0,1].
type Paint struct {
	Color colorful.Color
	Alpha float32
}

// RGBA255 returns the paint as 8-bit channels.
func (p Paint) RGBA255() (r, g, b, a uint8) {
	r, g, b = p.Color.Clamped().RGB255()
	alpha := p.Alpha
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return r, g, b, uint8(alpha*255 + 0.5)
}

// Surface is the drawing target of the field: a full-viewport canvas that
// keeps its contents between frames so the fade rectangle leaves trails.
type Surface interface {
	// Resize changes the backing store to w x h pixels.
	Resize(w, h int)
	// Size returns the backing store dimensions.
	Size() (w, h int)
	// BeginFrame and EndFrame bracket the draw calls of one frame.
	BeginFrame()
	EndFrame()
	// Fade paints a translucent rectangle over the whole surface.
	Fade(p Paint)
	// GlowCircle draws a filled circle with a soft halo of the given blur radius.
	GlowCircle(x, y, radius, blur float32, fill, glow Paint)
	// Line draws a straight segment.
	Line(x1, y1, x2, y2, width float32, p Paint)
}
