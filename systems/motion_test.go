package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ambient/components"
	"github.com/pthm-cable/ambient/config"
)

func testParams() MotionParams {
	return MotionParamsFromConfig(config.Default())
}

func TestPointerForceOutsideRadius(t *testing.T) {
	params := testParams()
	pointer := Pointer{X: 500, Y: 500, Active: true}

	tests := []struct {
		name string
		x, y float32
	}{
		{"exactly at radius", 800, 500},
		{"beyond radius", 1000, 1000},
		{"diagonal beyond", 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py, sx, sy := PointerForce(tt.x, tt.y, pointer, params)
			if px != 0 || py != 0 || sx != 0 || sy != 0 {
				t.Errorf("expected zero force, got push=(%v,%v) swirl=(%v,%v)", px, py, sx, sy)
			}
		})
	}
}

func TestPointerForceInactive(t *testing.T) {
	params := testParams()
	// Sentinel position, never moved.
	pointer := Pointer{X: -1000, Y: -1000}

	px, py, sx, sy := PointerForce(-999, -999, pointer, params)
	if px != 0 || py != 0 || sx != 0 || sy != 0 {
		t.Error("inactive pointer should exert no force")
	}
}

func TestPointerForcePushesAway(t *testing.T) {
	params := testParams()
	pointer := Pointer{X: 400, Y: 300, Active: true}

	positions := []struct{ x, y float32 }{
		{410, 300}, {400, 150}, {250, 250}, {600, 420}, {399, 301},
	}

	for _, p := range positions {
		pushX, pushY, swirlX, swirlY := PointerForce(p.x, p.y, pointer, params)

		// Pointer -> particle vector
		ax := p.x - pointer.X
		ay := p.y - pointer.Y
		if dot := pushX*ax + pushY*ay; dot <= 0 {
			t.Errorf("push at (%v,%v) not directed away from pointer: dot=%v", p.x, p.y, dot)
		}

		// Swirl is perpendicular to the push
		if dot := pushX*swirlX + pushY*swirlY; math.Abs(float64(dot)) > 1e-4 {
			t.Errorf("swirl at (%v,%v) not perpendicular to push: dot=%v", p.x, p.y, dot)
		}
	}
}

func TestPointerForceScalesWithDistance(t *testing.T) {
	params := testParams()
	pointer := Pointer{X: 0, Y: 0, Active: true}

	nearX, _, _, _ := PointerForce(50, 0, pointer, params)
	farX, _, _, _ := PointerForce(250, 0, pointer, params)

	if nearX <= farX {
		t.Errorf("closer particle should be pushed harder: near=%v far=%v", nearX, farX)
	}

	// force = (300-50)/300 * 18 * 0.04
	want := float32(250.0 / 300.0 * 18 * 0.04)
	if math.Abs(float64(nearX-want)) > 1e-4 {
		t.Errorf("push magnitude = %v, want %v", nearX, want)
	}
}

func TestPointerForceZeroDistance(t *testing.T) {
	params := testParams()
	pointer := Pointer{X: 120, Y: 80, Active: true}

	px, py, sx, sy := PointerForce(120, 80, pointer, params)
	for _, v := range []float32{px, py, sx, sy} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("non-finite force at zero distance: push=(%v,%v) swirl=(%v,%v)", px, py, sx, sy)
		}
	}
	if px != 0 || py != 0 {
		t.Errorf("expected zero push at zero distance, got (%v,%v)", px, py)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		v      float32
		extent float32
		want   float32
	}{
		{"inside", 50, 100, 50},
		{"at low margin", -20, 100, -20},
		{"past low margin", -20.5, 100, 120},
		{"at high margin", 120, 100, 120},
		{"past high margin", 121, 100, -20},
		{"far outside after shrink", 900, 100, -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.v, tt.extent, 20); got != tt.want {
				t.Errorf("Wrap(%v, %v, 20) = %v, want %v", tt.v, tt.extent, got, tt.want)
			}
		})
	}
}

func TestBrightnessBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10000; i++ {
		tm := rng.Float64() * 1000
		seed := rng.Float64() * 100
		b := Brightness(tm, seed)
		if b < 0 || b > 1 {
			t.Fatalf("Brightness(%v, %v) = %v, outside [0,1]", tm, seed, b)
		}
	}
}

func TestNoiseBounds(t *testing.T) {
	noises := map[string]FlowNoise{
		"trig":    TrigNoise{},
		"simplex": NewSimplexNoise(1),
	}
	for name, n := range noises {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 2000; i++ {
				v := n.Drift(float64(i)*0.37, float64(i%100))
				if v < -1 || v > 1 {
					t.Fatalf("Drift out of range: %v", v)
				}
			}
		})
	}
}

func TestNewFlowNoiseUnknown(t *testing.T) {
	if _, err := NewFlowNoise("perlin", 0); err == nil {
		t.Error("expected error for unknown noise kind")
	}
}

// spawnTestWorld creates n particles spread over the bounds.
func spawnTestWorld(n int, bounds Bounds, seed int64) *ecs.World {
	world := ecs.NewWorld()
	mapper := ecs.NewMap4[components.Position, components.Velocity, components.Heading, components.Glow](world)
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		pos := components.Position{X: rng.Float32() * bounds.Width, Y: rng.Float32() * bounds.Height}
		vel := components.Velocity{X: (rng.Float32() - 0.5) * 2, Y: (rng.Float32() - 0.5) * 2}
		head := components.Heading{Angle: rng.Float32() * 2 * math.Pi, Spin: rng.Float32()*0.05 - 0.025}
		glow := components.Glow{BaseSize: rng.Float32()*2 + 1, Seed: rng.Float32() * 100}
		mapper.NewEntity(&pos, &vel, &head, &glow)
	}
	return world
}

func TestMotionSystemWrapInvariant(t *testing.T) {
	bounds := Bounds{Width: 640, Height: 480}
	world := spawnTestWorld(120, bounds, 11)
	params := testParams()
	motion := NewMotionSystem(world, TrigNoise{}, params)

	pointer := Pointer{X: 320, Y: 240, Active: true}
	filter := ecs.NewFilter2[components.Position, components.Glow](world)

	tm := 0.0
	for frame := 0; frame < 600; frame++ {
		tm += 0.01
		// Sweep the pointer to keep particles agitated
		pointer.X = float32(frame % 640)
		motion.Update(tm, pointer, bounds)

		query := filter.Query()
		for query.Next() {
			pos, glow := query.Get()
			if pos.X < -params.WrapMargin || pos.X > bounds.Width+params.WrapMargin ||
				pos.Y < -params.WrapMargin || pos.Y > bounds.Height+params.WrapMargin {
				t.Fatalf("frame %d: particle at (%v,%v) escaped bounds", frame, pos.X, pos.Y)
			}
			if glow.Brightness < 0 || glow.Brightness > 1 {
				t.Fatalf("frame %d: brightness %v outside [0,1]", frame, glow.Brightness)
			}
		}
	}
}

func TestMotionSystemSentinelNoRepulsion(t *testing.T) {
	bounds := Bounds{Width: 1000, Height: 800}
	world := spawnTestWorld(160, bounds, 5)
	motion := NewMotionSystem(world, TrigNoise{}, testParams())

	pointer := Pointer{X: -1000, Y: -1000}
	if n := motion.Update(0.01, pointer, bounds); n != 0 {
		t.Errorf("expected no repelled particles with sentinel pointer, got %d", n)
	}
}

func TestMotionSystemDampingBoundsSpeed(t *testing.T) {
	bounds := Bounds{Width: 800, Height: 600}
	world := spawnTestWorld(50, bounds, 9)
	params := testParams()
	motion := NewMotionSystem(world, TrigNoise{}, params)

	tm := 0.0
	for i := 0; i < 1000; i++ {
		tm += 0.01
		motion.Update(tm, Pointer{}, bounds)
	}

	// Terminal speed under flow alone: (flow + noise) * d / (1 - d)
	limit := (params.FlowSpeed + params.NoiseGain) * 1.5 / (1 - params.Damping)
	if s := motion.MeanSpeed(); s > limit {
		t.Errorf("mean speed %v exceeds bound %v", s, limit)
	}
}

func TestPointerForceUsesDerivedRadius(t *testing.T) {
	cfg := config.Default()
	cfg.Pointer.Radius = 100
	cfg.ComputeDerived()
	params := MotionParamsFromConfig(cfg)
	if params.RadiusSq != 100*100 {
		t.Fatalf("RadiusSq = %v, want %v", params.RadiusSq, 100*100)
	}

	pointer := Pointer{X: 0, Y: 0, Active: true}
	if px, py, _, _ := PointerForce(99, 0, pointer, params); px == 0 && py == 0 {
		t.Error("particle inside the retuned radius should be pushed")
	}
	if px, py, _, _ := PointerForce(150, 0, pointer, params); px != 0 || py != 0 {
		t.Error("particle beyond the retuned radius should not be pushed")
	}
}

func TestMotionSystemSetParams(t *testing.T) {
	bounds := Bounds{Width: 1000, Height: 800}
	world := spawnTestWorld(160, bounds, 5)
	params := testParams()
	motion := NewMotionSystem(world, TrigNoise{}, params)
	pointer := Pointer{X: 500, Y: 400, Active: true}

	if n := motion.Update(0.01, pointer, bounds); n == 0 {
		t.Fatal("expected particles within the default radius")
	}

	params.Radius, params.RadiusSq = 0.001, 0.000001
	motion.SetParams(params)
	if n := motion.Update(0.02, pointer, bounds); n != 0 {
		t.Errorf("repelled = %d after shrinking the radius, want 0", n)
	}
}
