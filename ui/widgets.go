// Package ui draws the debug overlay of the raylib host.
package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"
)

// Style holds UI styling constants.
type Style struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultStyle returns the default UI style.
func DefaultStyle() Style {
	return Style{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Style Style
}

// NewRenderer creates a renderer with the default style.
func NewRenderer() *Renderer {
	return &Renderer{Style: DefaultStyle()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Style.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Style.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Style.HeaderFontSize, r.Style.SectionHeader)
	return y + r.Style.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Style.FontSize, r.Style.LabelColor)
	rl.DrawText(value, x+r.Style.LabelWidth, y, r.Style.FontSize, r.Style.ValueColor)
	return y + r.Style.LineHeight
}

// DrawBar draws a progress bar for [0, 1] values.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, width int32) int32 {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	barX := x + r.Style.LabelWidth
	barWidth := width - r.Style.LabelWidth - 50

	rl.DrawText(label+":", x, y, r.Style.FontSize, r.Style.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Style.BarHeight, r.Style.BarBg)

	fillWidth := int32(float32(barWidth) * value)
	rl.DrawRectangle(barX, y+2, fillWidth, r.Style.BarHeight, r.Style.BarFill)

	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, r.Style.FontSize, r.Style.ValueColor)

	return y + r.Style.LineHeight + 2
}

// DrawColorSwatch draws a labelled colour swatch with its hex code.
func (r *Renderer) DrawColorSwatch(x, y int32, label string, c colorful.Color) int32 {
	swatchSize := int32(12)

	rl.DrawText(label+":", x, y, r.Style.FontSize, r.Style.LabelColor)

	cr, cg, cb := c.Clamped().RGB255()
	rl.DrawRectangle(x+r.Style.LabelWidth, y+1, swatchSize, swatchSize, rl.Color{R: cr, G: cg, B: cb, A: 255})
	rl.DrawText(c.Hex(), x+r.Style.LabelWidth+swatchSize+6, y, r.Style.FontSize, r.Style.ValueColor)

	return y + r.Style.LineHeight
}
