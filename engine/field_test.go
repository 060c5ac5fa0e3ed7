package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/ambient/config"
	"github.com/pthm-cable/ambient/renderer"
	"github.com/pthm-cable/ambient/theme"
)

func newTestField(t *testing.T, w, h int, opts ...Option) (*Field, *renderer.Recorder) {
	t.Helper()
	rec := renderer.NewRecorder(0, 0, true)
	opts = append([]Option{WithViewport(w, h), WithSeed(1)}, opts...)
	f, err := New(config.Default(), rec, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(f.Close)
	return f, rec
}

func TestNewDefaultViewport(t *testing.T) {
	f, rec := newTestField(t, 1000, 800)

	if n := len(f.Particles()); n != 160 {
		t.Errorf("particles = %d, want 160", n)
	}
	if w, h := rec.Size(); w != 1000 || h != 800 {
		t.Errorf("surface = %dx%d, want 1000x800", w, h)
	}

	p := f.Pointer()
	if p.X != -1000 || p.Y != -1000 || p.Active {
		t.Errorf("pointer = %+v, want inactive sentinel at (-1000,-1000)", p)
	}

	stats := f.Frame()
	if stats.Repelled != 0 {
		t.Errorf("repelled on frame 1 = %d, want 0", stats.Repelled)
	}
	if stats.Frame != 1 || stats.Particles != 160 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if got := rec.Count(renderer.OpCircle); got != 160 {
		t.Errorf("circles drawn = %d, want 160", got)
	}
	if got := rec.Count(renderer.OpFade); got != 1 {
		t.Errorf("fades drawn = %d, want 1", got)
	}
}

func TestNewNarrowViewport(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  int
	}{
		{"phone", 375, 96},
		{"just below breakpoint", 767, 96},
		{"at breakpoint", 768, 160},
		{"desktop", 1920, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestField(t, tt.width, 800)
			if n := len(f.Particles()); n != tt.want {
				t.Errorf("particles = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(config.Default(), nil); !errors.Is(err, ErrNoSurface) {
		t.Errorf("nil surface: got %v, want ErrNoSurface", err)
	}

	rec := renderer.NewRecorder(0, 0, false)
	if _, err := New(nil, rec); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil config: got %v, want ErrInvalidConfig", err)
	}

	cfg := config.Default()
	cfg.Field.ConnectionDistance = 0
	_, err := New(cfg, rec)
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, config.ErrInvalid) {
		t.Errorf("bad config: got %v, want ErrInvalidConfig wrapping config.ErrInvalid", err)
	}

	cfg = config.Default()
	cfg.Palettes.Dark.Trail = "navy"
	if _, err := New(cfg, rec); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad palette: got %v, want ErrInvalidConfig", err)
	}
}

func TestSameSeedIsReproducible(t *testing.T) {
	a, _ := newTestField(t, 1000, 800, WithSeed(42))
	b, _ := newTestField(t, 1000, 800, WithSeed(42))
	c, _ := newTestField(t, 1000, 800, WithSeed(43))

	for i := 0; i < 10; i++ {
		a.Frame()
		b.Frame()
		c.Frame()
	}

	pa, pb, pc := a.Particles(), b.Particles(), c.Particles()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("particle %d differs between equal seeds: %+v vs %+v", i, pa[i], pb[i])
		}
	}
	if pa[0] == pc[0] {
		t.Error("different seeds produced the same first particle")
	}
}

func TestInitialParticleRanges(t *testing.T) {
	f, _ := newTestField(t, 1000, 800)
	for i, p := range f.Particles() {
		switch {
		case p.X < 0 || p.X >= 1000 || p.Y < 0 || p.Y >= 800:
			t.Fatalf("particle %d outside viewport: (%v,%v)", i, p.X, p.Y)
		case p.VX < -1 || p.VX >= 1 || p.VY < -1 || p.VY >= 1:
			t.Fatalf("particle %d velocity out of range: (%v,%v)", i, p.VX, p.VY)
		case p.BaseSize < 1 || p.BaseSize >= 3:
			t.Fatalf("particle %d base size %v", i, p.BaseSize)
		case p.Spin < -0.025 || p.Spin >= 0.025:
			t.Fatalf("particle %d spin %v", i, p.Spin)
		case p.ColorIndex > 1:
			t.Fatalf("particle %d colour index %d", i, p.ColorIndex)
		case p.Seed < 0 || p.Seed >= 100:
			t.Fatalf("particle %d seed %v", i, p.Seed)
		}
	}
}

func TestWrapAndBrightnessInvariants(t *testing.T) {
	f, rec := newTestField(t, 1000, 800)
	f.OnPointerMove(500, 400)

	const margin = 20
	for frame := 0; frame < 600; frame++ {
		// Move the pointer around to keep forces varied
		if frame%50 == 0 {
			f.OnPointerMove(float32(frame%1000), float32((frame*7)%800))
		}
		f.Frame()
		w, h := rec.Size()
		for i, p := range f.Particles() {
			if p.X < -margin || p.X > float32(w)+margin || p.Y < -margin || p.Y > float32(h)+margin {
				t.Fatalf("frame %d particle %d escaped: (%v,%v)", frame, i, p.X, p.Y)
			}
			if p.Brightness < 0 || p.Brightness > 1 {
				t.Fatalf("frame %d particle %d brightness %v", frame, i, p.Brightness)
			}
		}
	}
}

func TestPointerOnParticleStaysFinite(t *testing.T) {
	f, _ := newTestField(t, 1000, 800)
	target := f.Particles()[0]
	f.OnPointerMove(target.X, target.Y)

	stats := f.Frame()
	for i, p := range f.Particles() {
		for _, v := range []float32{p.X, p.Y, p.VX, p.VY} {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("particle %d has non-finite state %+v", i, p)
			}
		}
	}
	if stats.Repelled >= stats.Particles {
		t.Errorf("repelled = %d, the particle under the pointer should be skipped", stats.Repelled)
	}
}

func TestConnectionsMatchBruteForce(t *testing.T) {
	f, rec := newTestField(t, 1000, 800)
	threshold := float32(config.Default().Field.ConnectionDistance)

	for frame := 0; frame < 5; frame++ {
		stats := f.Frame()
		ps := f.Particles()

		want := 0
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				dx := ps[i].X - ps[j].X
				dy := ps[i].Y - ps[j].Y
				if dx*dx+dy*dy < threshold*threshold {
					want++
				}
			}
		}
		if stats.Connections != want {
			t.Errorf("frame %d: connections = %d, want %d", frame, stats.Connections, want)
		}
		if got := rec.Count(renderer.OpLine); got != want {
			t.Errorf("frame %d: lines drawn = %d, want %d", frame, got, want)
		}
	}
}

func TestThemeSwitchChangesOnlyPalette(t *testing.T) {
	lightRoot := theme.NewRoot()
	lightRoot.SetAttribute(theme.DefaultAttribute, theme.Light)
	darkRoot := theme.NewRoot()
	darkRoot.SetAttribute(theme.DefaultAttribute, theme.Light)

	light, lightRec := newTestField(t, 1000, 800, WithThemeRoot(lightRoot))
	dark, darkRec := newTestField(t, 1000, 800, WithThemeRoot(darkRoot))

	before := dark.Particles()
	darkRoot.SetAttribute(theme.DefaultAttribute, theme.Dark)
	if !dark.Dark() {
		t.Fatal("field did not observe the theme change")
	}
	after := dark.Particles()
	if len(before) != len(after) {
		t.Fatalf("particle count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d changed on theme switch", i)
		}
	}

	light.Frame()
	dark.Frame()

	lp, dp := light.Particles(), dark.Particles()
	for i := range lp {
		if lp[i].X != dp[i].X || lp[i].Y != dp[i].Y || lp[i].VX != dp[i].VX || lp[i].VY != dp[i].VY {
			t.Fatalf("particle %d motion differs between themes", i)
		}
	}

	pals, _ := renderer.ParsePalettes(config.Default().Palettes)
	if got := lightRec.Ops()[0].Paint.Color; got != pals.Light.Trail {
		t.Errorf("light fade colour = %v, want %v", got, pals.Light.Trail)
	}
	if got := darkRec.Ops()[0].Paint.Color; got != pals.Dark.Trail {
		t.Errorf("dark fade colour = %v, want %v", got, pals.Dark.Trail)
	}
}

func TestOnThemeChangeRereadsRoot(t *testing.T) {
	root := theme.NewRoot()
	f, _ := newTestField(t, 1000, 800, WithThemeRoot(root))
	if f.Dark() {
		t.Fatal("unset attribute should mean light")
	}

	// Detached field ignores later changes until asked to re-read
	f.Close()
	root.SetAttribute(theme.DefaultAttribute, theme.Dark)
	if f.Dark() {
		t.Fatal("closed field should not observe changes")
	}
	f.OnThemeChange()
	if !f.Dark() {
		t.Error("OnThemeChange should pick up dark")
	}

	root.SetAttribute(theme.DefaultAttribute, "sepia")
	f.OnThemeChange()
	if f.Dark() {
		t.Error("unknown theme should fall back to light")
	}
}

func TestResizeKeepsParticles(t *testing.T) {
	f, rec := newTestField(t, 1000, 800)
	f.Frame()
	before := f.Particles()

	f.OnResize(500, 400)

	if w, h := rec.Size(); w != 500 || h != 400 {
		t.Errorf("surface = %dx%d, want 500x400", w, h)
	}
	after := f.Particles()
	if len(after) != len(before) {
		t.Fatalf("particle count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d changed on resize", i)
		}
	}
}

func TestFrameHooksAndSamples(t *testing.T) {
	var seen []int64
	f, _ := newTestField(t, 1000, 800, WithFrameHook(func(s FrameStats) {
		seen = append(seen, s.Frame)
	}))

	for i := 0; i < 3; i++ {
		f.Frame()
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Errorf("hook frames = %v, want [1 2 3]", seen)
	}
	if got, want := f.Time(), 0.03; math.Abs(got-want) > 1e-9 {
		t.Errorf("time = %v, want %v", got, want)
	}

	speeds, brightness := f.Samples()
	if len(speeds) != 160 || len(brightness) != 160 {
		t.Fatalf("samples = %d/%d, want 160", len(speeds), len(brightness))
	}
	sample := f.Stats().Sample()
	if sample.Frame != 3 || sample.Particles != 160 {
		t.Errorf("unexpected sample %+v", sample)
	}
}

func TestRetuneKeepsParticles(t *testing.T) {
	f, _ := newTestField(t, 1000, 800)
	f.Frame()
	before := f.Particles()

	cfg := config.Default()
	cfg.Field.ConnectionDistance = 2000
	cfg.Pointer.Radius = 50
	cfg.ComputeDerived()
	if err := f.Retune(cfg); err != nil {
		t.Fatalf("Retune: %v", err)
	}

	after := f.Particles()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d changed on retune", i)
		}
	}

	stats := f.Frame()
	n := stats.Particles
	if stats.Connections != n*(n-1)/2 {
		t.Errorf("connections = %d, want every pair (%d)", stats.Connections, n*(n-1)/2)
	}
	if stats.Frame != 2 {
		t.Errorf("frame = %d, want 2; retune should not restart the field", stats.Frame)
	}

	cfg.Field.Damping = 2
	if err := f.Retune(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Retune with bad damping = %v, want ErrInvalidConfig", err)
	}
}
