// Package termcanvas implements renderer.Surface on a tcell terminal screen.
//
// Each character cell covers CellW x CellH viewport pixels. The canvas keeps
// a colour per cell so fades leave trails like the pixel canvas does.
package termcanvas

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/ambient/renderer"
)

// Pixel size of one terminal cell.
const (
	CellW = 8
	CellH = 16
)

// Canvas renders into a tcell screen.
type Canvas struct {
	screen     tcell.Screen
	cols, rows int
	cells      []colorful.Color
}

// New creates a canvas covering the whole screen.
func New(screen tcell.Screen, background colorful.Color) *Canvas {
	c := &Canvas{screen: screen}
	cols, rows := screen.Size()
	c.resizeCells(cols, rows, background)
	return c
}

// Resize takes pixel dimensions and resizes the cell grid to match.
func (c *Canvas) Resize(w, h int) {
	bg := colorful.Color{}
	if len(c.cells) > 0 {
		bg = c.cells[0]
	}
	c.resizeCells(w/CellW, h/CellH, bg)
}

func (c *Canvas) resizeCells(cols, rows int, bg colorful.Color) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.cols, c.rows = cols, rows
	c.cells = make([]colorful.Color, cols*rows)
	for i := range c.cells {
		c.cells[i] = bg
	}
}

// Size returns the canvas size in viewport pixels.
func (c *Canvas) Size() (int, int) {
	return c.cols * CellW, c.rows * CellH
}

// Cells returns the grid dimensions.
func (c *Canvas) Cells() (cols, rows int) {
	return c.cols, c.rows
}

func (c *Canvas) BeginFrame() {}

// EndFrame flushes the cell colours to the screen.
func (c *Canvas) EndFrame() {
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			r, g, b := c.cells[row*c.cols+col].Clamped().RGB255()
			style := tcell.StyleDefault.Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
			c.screen.SetContent(col, row, ' ', nil, style)
		}
	}
	c.screen.Show()
}

func (c *Canvas) Fade(p renderer.Paint) {
	for i := range c.cells {
		c.cells[i] = c.cells[i].BlendRgb(p.Color, float64(p.Alpha))
	}
}

// GlowCircle colours the cells covered by the circle, plus a dimmer ring
// for cells within the blur radius.
func (c *Canvas) GlowCircle(x, y, radius, blur float32, fill, glow renderer.Paint) {
	cx, cy := int(x)/CellW, int(y)/CellH
	reach := int(math.Ceil(float64(radius+blur) / CellW))
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			col, row := cx+dx, cy+dy
			if !c.inside(col, row) {
				continue
			}
			px := float32(col*CellW + CellW/2)
			py := float32(row*CellH + CellH/2)
			d := float32(math.Hypot(float64(px-x), float64(py-y)))
			switch {
			case dx == 0 && dy == 0, d <= radius:
				c.blend(col, row, fill)
			case d <= radius+blur && blur > 0:
				fall := 1 - (d-radius)/blur
				c.blend(col, row, renderer.Paint{Color: glow.Color, Alpha: glow.Alpha * fall * 0.5})
			}
		}
	}
}

// Line blends the cells along the segment using a DDA walk.
func (c *Canvas) Line(x1, y1, x2, y2, width float32, p renderer.Paint) {
	c1, r1 := float64(x1)/CellW, float64(y1)/CellH
	c2, r2 := float64(x2)/CellW, float64(y2)/CellH
	steps := int(math.Max(math.Abs(c2-c1), math.Abs(r2-r1)))
	if steps == 0 {
		c.blend(int(c1), int(r1), p)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.blend(int(c1+(c2-c1)*t), int(r1+(r2-r1)*t), p)
	}
}

func (c *Canvas) inside(col, row int) bool {
	return col >= 0 && col < c.cols && row >= 0 && row < c.rows
}

func (c *Canvas) blend(col, row int, p renderer.Paint) {
	if !c.inside(col, row) {
		return
	}
	i := row*c.cols + col
	c.cells[i] = c.cells[i].BlendRgb(p.Color, float64(p.Alpha))
}

// At returns the colour of a cell.
func (c *Canvas) At(col, row int) colorful.Color {
	return c.cells[row*c.cols+col]
}
