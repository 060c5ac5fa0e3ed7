package telemetry

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase is one timed step of a field frame.
type Phase int

const (
	PhaseFade Phase = iota
	PhaseMotion
	PhaseDraw
	PhaseConnections

	NumPhases
)

var phaseNames = [NumPhases]string{"fade", "motion", "draw", "connections"}

func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PerfCollector keeps a ring of the last N frame timings. It is driven by
// the frame that owns it and is not safe for concurrent use on its own.
type PerfCollector struct {
	frames []float64            // frame durations, ns
	phases [NumPhases][]float64 // per-phase durations, ns
	next   int
	filled int

	frameStart time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
	current    [NumPhases]time.Duration

	lastPresent time.Time
	present     time.Duration
}

// NewPerfCollector returns a collector averaging over window frames
// (60 if window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	pc := &PerfCollector{frames: make([]float64, window)}
	for i := range pc.phases {
		pc.phases[i] = make([]float64, window)
	}
	return pc
}

func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.current = [NumPhases]time.Duration{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = ph, now, true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < NumPhases {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

func (p *PerfCollector) EndFrame() {
	now := time.Now()
	p.closePhase(now)

	p.frames[p.next] = float64(now.Sub(p.frameStart))
	for ph := range p.phases {
		p.phases[ph][p.next] = float64(p.current[ph])
	}
	p.next = (p.next + 1) % len(p.frames)
	if p.filled < len(p.frames) {
		p.filled++
	}
}

// RecordPresent notes that a frame reached the screen.
func (p *PerfCollector) RecordPresent() {
	now := time.Now()
	if !p.lastPresent.IsZero() {
		p.present = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats summarises the frames in the window.
type PerfStats struct {
	AvgFrameDuration time.Duration
	MinFrameDuration time.Duration
	MaxFrameDuration time.Duration

	// Indexed by Phase; percentages are of the average frame.
	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64

	// Frames the field could compute per second.
	FramesPerSecond float64

	// Window hosts only.
	PresentInterval time.Duration
	FPS             float64
}

func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{PresentInterval: p.present}
	if p.present > 0 {
		s.FPS = float64(time.Second) / float64(p.present)
	}
	if p.filled == 0 {
		return s
	}

	frames := p.frames[:p.filled]
	avg := stat.Mean(frames, nil)
	s.AvgFrameDuration = time.Duration(avg)
	s.MinFrameDuration = time.Duration(floats.Min(frames))
	s.MaxFrameDuration = time.Duration(floats.Max(frames))
	if avg > 0 {
		s.FramesPerSecond = float64(time.Second) / avg
	}

	for ph := range p.phases {
		mean := stat.Mean(p.phases[ph][:p.filled], nil)
		s.PhaseAvg[ph] = time.Duration(mean)
		if avg > 0 {
			s.PhasePct[ph] = mean / avg * 100
		}
	}
	return s
}

// LogStats writes the stats as one slog line.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrameDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrameDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrameDuration.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		if s.PhasePct[ph] > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd      int64   `csv:"window_end"`
	AvgFrameUS     int64   `csv:"avg_frame_us"`
	MinFrameUS     int64   `csv:"min_frame_us"`
	MaxFrameUS     int64   `csv:"max_frame_us"`
	FramesPerSec   float64 `csv:"frames_per_sec"`
	FPS            float64 `csv:"fps"`
	FadePct        float64 `csv:"fade_pct"`
	MotionPct      float64 `csv:"motion_pct"`
	DrawPct        float64 `csv:"draw_pct"`
	ConnectionsPct float64 `csv:"connections_pct"`
}

func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgFrameUS:     s.AvgFrameDuration.Microseconds(),
		MinFrameUS:     s.MinFrameDuration.Microseconds(),
		MaxFrameUS:     s.MaxFrameDuration.Microseconds(),
		FramesPerSec:   s.FramesPerSecond,
		FPS:            s.FPS,
		FadePct:        s.PhasePct[PhaseFade],
		MotionPct:      s.PhasePct[PhaseMotion],
		DrawPct:        s.PhasePct[PhaseDraw],
		ConnectionsPct: s.PhasePct[PhaseConnections],
	}
}
