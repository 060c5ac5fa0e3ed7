// Package components defines ECS components for the particle field.
package components

// Position represents a particle's viewport position in pixels.
type Position struct {
	X, Y float32
}

// Velocity represents a particle's velocity in pixels per frame.
type Velocity struct {
	X, Y float32
}

// Heading drives the autonomous drift direction.
type Heading struct {
	Angle float32 // radians
	Spin  float32 // radians per frame
}

// Glow holds the rendering state of a particle.
// Brightness is recomputed every frame from field time and Seed.
type Glow struct {
	Size       float32
	BaseSize   float32
	Brightness float32 // [0,1]
	Seed       float32 // phase offset for oscillation
	ColorIndex uint8   // index into the active palette
}
