// Package systems contains the per-frame ECS systems of the particle field.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ambient/components"
	"github.com/pthm-cable/ambient/config"
)

// Bounds represents the viewport the particles wrap around.
type Bounds struct {
	Width, Height float32
}

// Pointer is the interaction point that repels particles.
// Until Active is set the position holds an off-screen sentinel.
type Pointer struct {
	X, Y   float32
	Active bool
}

// MotionParams holds the motion constants read from config.
type MotionParams struct {
	FlowSpeed   float32
	NoiseGain   float32
	Force       float32
	Radius      float32
	RadiusSq    float32
	PushScale   float32
	SwirlScale  float32
	MinDistance float32
	Damping     float32
	WrapMargin  float32
}

// MotionParamsFromConfig extracts motion constants from the loaded config.
func MotionParamsFromConfig(cfg *config.Config) MotionParams {
	return MotionParams{
		FlowSpeed:   float32(cfg.Flow.Speed),
		NoiseGain:   float32(cfg.Flow.NoiseGain),
		Force:       float32(cfg.Pointer.Force),
		Radius:      float32(cfg.Pointer.Radius),
		RadiusSq:    cfg.Derived.RadiusSq,
		PushScale:   float32(cfg.Pointer.PushScale),
		SwirlScale:  float32(cfg.Pointer.SwirlScale),
		MinDistance: float32(cfg.Pointer.MinDistance),
		Damping:     float32(cfg.Field.Damping),
		WrapMargin:  float32(cfg.Field.WrapMargin),
	}
}

// PointerForce returns the push and swirl components acting on a particle
// at (x, y). Both are zero when the pointer is inactive, at or beyond its
// radius, or closer than MinDistance.
func PointerForce(x, y float32, p Pointer, params MotionParams) (pushX, pushY, swirlX, swirlY float32) {
	if !p.Active {
		return 0, 0, 0, 0
	}
	dx := p.X - x
	dy := p.Y - y
	d2 := dx*dx + dy*dy
	if d2 >= params.RadiusSq {
		return 0, 0, 0, 0
	}
	dist := float32(math.Sqrt(float64(d2)))
	if dist < params.MinDistance {
		return 0, 0, 0, 0
	}

	force := (params.Radius - dist) / params.Radius
	strength := force * params.Force
	nx := dx / dist
	ny := dy / dist

	pushX = -nx * strength * params.PushScale
	pushY = -ny * strength * params.PushScale
	swirlX = ny * strength * params.SwirlScale
	swirlY = -nx * strength * params.SwirlScale
	return pushX, pushY, swirlX, swirlY
}

// Wrap moves a coordinate that left [-margin, extent+margin] to the opposite edge.
func Wrap(v, extent, margin float32) float32 {
	if v < -margin {
		return extent + margin
	}
	if v > extent+margin {
		return -margin
	}
	return v
}

// Brightness returns the shimmer level of a particle at field time t.
func Brightness(t, seed float64) float32 {
	return clamp01((sinf(t*2+seed) + 1) / 2)
}

// MotionSystem advances every particle by one frame.
type MotionSystem struct {
	filter *ecs.Filter4[components.Position, components.Velocity, components.Heading, components.Glow]
	noise  FlowNoise
	params MotionParams
}

// NewMotionSystem creates a motion system over the particles in w.
func NewMotionSystem(w *ecs.World, noise FlowNoise, params MotionParams) *MotionSystem {
	return &MotionSystem{
		filter: ecs.NewFilter4[components.Position, components.Velocity, components.Heading, components.Glow](w),
		noise:  noise,
		params: params,
	}
}

// SetParams replaces the motion constants for later frames.
func (s *MotionSystem) SetParams(params MotionParams) {
	s.params = params
}

// SetNoise replaces the flow noise source.
func (s *MotionSystem) SetNoise(noise FlowNoise) {
	s.noise = noise
}

// Update applies flow drift, pointer repulsion, integration, damping,
// wrapping and brightness to all particles. It returns how many particles
// the pointer acted on.
func (s *MotionSystem) Update(t float64, pointer Pointer, bounds Bounds) int {
	repelled := 0
	query := s.filter.Query()
	for query.Next() {
		pos, vel, head, glow := query.Get()
		seed := float64(glow.Seed)

		// Flow field
		noise := s.noise.Drift(t, seed) * s.params.NoiseGain
		vel.X += cosf(float64(head.Angle))*s.params.FlowSpeed + noise
		vel.Y += sinf(float64(head.Angle))*s.params.FlowSpeed + noise
		head.Angle += head.Spin

		// Pointer push and swirl
		pushX, pushY, swirlX, swirlY := PointerForce(pos.X, pos.Y, pointer, s.params)
		if pushX != 0 || pushY != 0 {
			repelled++
		}
		vel.X += pushX + swirlX
		vel.Y += pushY + swirlY

		// Integrate, then drag
		pos.X += vel.X
		pos.Y += vel.Y
		vel.X *= s.params.Damping
		vel.Y *= s.params.Damping

		pos.X = Wrap(pos.X, bounds.Width, s.params.WrapMargin)
		pos.Y = Wrap(pos.Y, bounds.Height, s.params.WrapMargin)

		glow.Brightness = Brightness(t, seed)
	}
	return repelled
}

// MeanSpeed returns the average velocity magnitude over all particles.
func (s *MotionSystem) MeanSpeed() float32 {
	var total float32
	n := 0
	query := s.filter.Query()
	for query.Next() {
		_, vel, _, _ := query.Get()
		total += velocityMagnitude(vel.X, vel.Y)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float32(n)
}
