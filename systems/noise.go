package systems

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"
)

// FlowNoise produces the scalar drift term of the flow field.
// Values must stay in [-1, 1] and depend only on time and the particle seed.
type FlowNoise interface {
	Drift(t, seed float64) float32
}

// TrigNoise is the sin/cos composition flow term.
type TrigNoise struct{}

// Drift returns sin(0.5t + seed) * cos(0.3t + seed).
func (TrigNoise) Drift(t, seed float64) float32 {
	return float32(math.Sin(t*0.5+seed) * math.Cos(t*0.3+seed))
}

// SimplexNoise samples 2D simplex noise along (time, seed).
type SimplexNoise struct {
	noise opensimplex.Noise
}

// NewSimplexNoise creates a simplex flow term with a fixed permutation seed.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{noise: opensimplex.New(seed)}
}

// Drift returns simplex noise at (0.5t, seed), clamped to [-1, 1].
func (s *SimplexNoise) Drift(t, seed float64) float32 {
	v := float32(s.noise.Eval2(t*0.5, seed))
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// NewFlowNoise returns the flow term named by kind ("trig" or "simplex").
func NewFlowNoise(kind string, seed int64) (FlowNoise, error) {
	switch kind {
	case "", "trig":
		return TrigNoise{}, nil
	case "simplex":
		return NewSimplexNoise(seed), nil
	}
	return nil, fmt.Errorf("unknown flow noise %q", kind)
}
