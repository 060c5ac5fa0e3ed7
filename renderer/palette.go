package renderer

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/ambient/config"
)

// Palette holds the colours used under one theme.
type Palette struct {
	Particles []colorful.Color
	Trail     colorful.Color
}

// Particle returns the colour for a particle colour index.
func (p Palette) Particle(index uint8) colorful.Color {
	return p.Particles[int(index)%len(p.Particles)]
}

// Palettes holds the light and dark palettes.
type Palettes struct {
	Light Palette
	Dark  Palette
}

// For returns the dark palette when dark is set, otherwise the light one.
func (p *Palettes) For(dark bool) *Palette {
	if dark {
		return &p.Dark
	}
	return &p.Light
}

// ParsePalette converts hex colours from config.
func ParsePalette(cfg config.PaletteConfig) (Palette, error) {
	if len(cfg.Particles) == 0 {
		return Palette{}, fmt.Errorf("palette has no particle colours")
	}
	pal := Palette{Particles: make([]colorful.Color, len(cfg.Particles))}
	for i, hex := range cfg.Particles {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Palette{}, fmt.Errorf("particle colour %d: %w", i, err)
		}
		pal.Particles[i] = c
	}
	trail, err := colorful.Hex(cfg.Trail)
	if err != nil {
		return Palette{}, fmt.Errorf("trail colour: %w", err)
	}
	pal.Trail = trail
	return pal, nil
}

// ParsePalettes converts both theme palettes from config.
func ParsePalettes(cfg config.PalettesConfig) (Palettes, error) {
	light, err := ParsePalette(cfg.Light)
	if err != nil {
		return Palettes{}, fmt.Errorf("light palette: %w", err)
	}
	dark, err := ParsePalette(cfg.Dark)
	if err != nil {
		return Palettes{}, fmt.Errorf("dark palette: %w", err)
	}
	return Palettes{Light: light, Dark: dark}, nil
}
