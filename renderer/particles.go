package renderer

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ambient/components"
	"github.com/pthm-cable/ambient/config"
	"github.com/pthm-cable/ambient/systems"
)

// Style holds the drawing constants read from config.
type Style struct {
	TrailAlpha      float32
	AlphaBase       float32
	AlphaGain       float32
	SizeGain        float32
	GlowBase        float32
	GlowGain        float32
	GlowAlpha       float32
	ConnectionAlpha float32
	LineWidth       float32
	Threshold       float32
}

// StyleFromConfig extracts drawing constants from the loaded config.
func StyleFromConfig(cfg *config.Config) Style {
	return Style{
		TrailAlpha:      float32(cfg.Render.TrailAlpha),
		AlphaBase:       float32(cfg.Render.AlphaBase),
		AlphaGain:       float32(cfg.Render.AlphaGain),
		SizeGain:        float32(cfg.Render.SizeGain),
		GlowBase:        float32(cfg.Render.GlowBase),
		GlowGain:        float32(cfg.Render.GlowGain),
		GlowAlpha:       float32(cfg.Render.GlowAlpha),
		ConnectionAlpha: float32(cfg.Render.ConnectionAlpha),
		LineWidth:       float32(cfg.Render.LineWidth),
		Threshold:       float32(cfg.Field.ConnectionDistance),
	}
}

// ParticleRenderer draws particles and their connections.
type ParticleRenderer struct {
	filter *ecs.Filter2[components.Position, components.Glow]
	style  Style
}

// SetStyle replaces the drawing constants for later frames.
func (r *ParticleRenderer) SetStyle(style Style) {
	r.style = style
}

// NewParticleRenderer creates a particle renderer over the particles in w.
func NewParticleRenderer(w *ecs.World, style Style) *ParticleRenderer {
	return &ParticleRenderer{
		filter: ecs.NewFilter2[components.Position, components.Glow](w),
		style:  style,
	}
}

// Fade paints the trail rectangle in the palette's background colour.
func (r *ParticleRenderer) Fade(s Surface, pal *Palette) {
	s.Fade(Paint{Color: pal.Trail, Alpha: r.style.TrailAlpha})
}

// DrawParticles renders every particle as a glowing circle. Render radius
// and alpha are derived from the brightness computed by the motion pass;
// the derived radius is stored back into Glow.Size.
func (r *ParticleRenderer) DrawParticles(s Surface, pal *Palette) {
	query := r.filter.Query()
	for query.Next() {
		pos, glow := query.Get()

		b := glow.Brightness
		glow.Size = glow.BaseSize + b*r.style.SizeGain
		color := pal.Particle(glow.ColorIndex)

		s.GlowCircle(
			pos.X, pos.Y,
			glow.Size,
			r.style.GlowBase+b*r.style.GlowGain,
			Paint{Color: color, Alpha: r.style.AlphaBase + b*r.style.AlphaGain},
			Paint{Color: color, Alpha: r.style.GlowAlpha},
		)
	}
}

// DrawConnections renders a line for every connection, in the palette's
// first colour, more opaque for closer pairs.
func (r *ParticleRenderer) DrawConnections(s Surface, pal *Palette, conns []systems.Connection) {
	color := pal.Particle(0)
	for _, c := range conns {
		alpha := systems.ConnectionAlpha(c.Dist, r.style.Threshold, r.style.ConnectionAlpha)
		s.Line(c.A.X, c.A.Y, c.B.X, c.B.Y, r.style.LineWidth, Paint{Color: color, Alpha: alpha})
	}
}
