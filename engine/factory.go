package engine

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ambient/components"
)

// spawnParticles creates n particles spread over a w x h viewport.
func (f *Field) spawnParticles(n int, w, h float32) {
	colors := len(f.palettes.Light.Particles)
	speed := float32(f.cfg.Field.InitialSpeed)
	for i := 0; i < n; i++ {
		f.spawnParticle(w, h, speed, colors)
	}
	f.count = n
}

// spawnParticle creates one particle with randomised position, velocity,
// heading and glow.
func (f *Field) spawnParticle(w, h, speed float32, colors int) ecs.Entity {
	rng := f.rng

	pos := components.Position{
		X: rng.Float32() * w,
		Y: rng.Float32() * h,
	}
	vel := components.Velocity{
		X: (rng.Float32() - 0.5) * 2 * speed,
		Y: (rng.Float32() - 0.5) * 2 * speed,
	}
	head := components.Heading{
		Angle: rng.Float32() * 2 * math.Pi,
		Spin:  rng.Float32()*0.05 - 0.025,
	}
	glow := components.Glow{
		Size:       rng.Float32()*2 + 1,
		BaseSize:   rng.Float32()*2 + 1,
		ColorIndex: uint8(rng.Intn(colors)),
		Seed:       rng.Float32() * 100,
		Brightness: rng.Float32(),
	}

	return f.mapper.NewEntity(&pos, &vel, &head, &glow)
}
