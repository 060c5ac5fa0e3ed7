package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ambient/renderer"
	"github.com/pthm-cable/ambient/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Particles    int
	Connections  int
	Repelled     int
	Frame        int64
	FieldTime    float64
	FPS          int32
	Paused       bool
	Theme        string
	PointerX     float32
	PointerY     float32
	PointerOn    bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    260,
	}
}

// Draw renders the HUD panel in the top-left corner and returns its bottom edge.
func (h *HUD) Draw(data HUDData, pal *renderer.Palette) int32 {
	r := h.renderer
	pad := r.Style.Padding
	lines := int32(9 + len(pal.Particles))
	height := lines*r.Style.LineHeight + pad*2

	r.DrawPanel(pad, pad, h.width, height)

	x := pad * 2
	y := pad * 2
	y = r.DrawSectionHeader(x, y, data.Title)
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Connections", fmt.Sprintf("%d", data.Connections))
	y = r.DrawLabelValue(x, y, "Repelled", fmt.Sprintf("%d", data.Repelled))
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d (t=%.2f)", data.Frame, data.FieldTime))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))

	pointer := "inactive"
	if data.PointerOn {
		pointer = fmt.Sprintf("%.0f, %.0f", data.PointerX, data.PointerY)
	}
	y = r.DrawLabelValue(x, y, "Pointer", pointer)
	y = r.DrawLabelValue(x, y, "Theme", data.Theme)

	for i, c := range pal.Particles {
		y = r.DrawColorSwatch(x, y, fmt.Sprintf("Colour %d", i), c)
	}

	if data.Paused {
		rl.DrawText("PAUSED", x, y, 16, rl.Yellow)
	}
	return pad + height
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PhaseRow is one line of the performance panel.
type PhaseRow struct {
	Name string
	Avg  time.Duration
	Pct  float64
}

// PhaseRows returns the timed frame phases sorted by average duration
// (descending). Phases with no recorded time are left out.
func PhaseRows(stats telemetry.PerfStats) []PhaseRow {
	rows := make([]PhaseRow, 0, telemetry.NumPhases)
	for ph := telemetry.Phase(0); ph < telemetry.NumPhases; ph++ {
		if stats.PhaseAvg[ph] == 0 {
			continue
		}
		rows = append(rows, PhaseRow{Name: ph.String(), Avg: stats.PhaseAvg[ph], Pct: stats.PhasePct[ph]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Avg == rows[j].Avg {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Avg > rows[j].Avg
	})
	return rows
}

// PerfPanel renders the frame phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s",
		stats.AvgFrameDuration.Round(time.Microsecond),
		stats.MaxFrameDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, row := range PhaseRows(stats) {
		color := rl.LightGray
		if row.Pct > 50 {
			color = rl.Red
		} else if row.Pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", row.Name, row.Avg.Round(time.Microsecond), row.Pct),
			x, y, 12, color,
		)
		y += 14
	}
}
