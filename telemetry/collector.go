package telemetry

// FrameSample is what the field reports after each frame.
type FrameSample struct {
	Frame       int64
	FieldTime   float64
	Particles   int
	Connections int
	Repelled    int
	Dark        bool
}

// Collector accumulates frame samples within windows and produces WindowStats.
type Collector struct {
	windowDurationFrames int64

	// Current window tracking
	windowStartFrame int64

	// Counters for current window
	frames         int
	connectionsSum int
	connectionsMax int
	repelledSum    int
	pointerFrames  int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in wall-clock seconds
// dt: seconds per frame at the target frame rate
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	framesPerWindow := int64(windowDurationSec / dt)
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}

	return &Collector{windowDurationFrames: framesPerWindow}
}

// Record adds one frame to the current window.
func (c *Collector) Record(s FrameSample) {
	c.frames++
	c.connectionsSum += s.Connections
	if s.Connections > c.connectionsMax {
		c.connectionsMax = s.Connections
	}
	c.repelledSum += s.Repelled
	if s.Repelled > 0 {
		c.pointerFrames++
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int64) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds and brightness are per-particle samples taken at window end.
func (c *Collector) Flush(last FrameSample, speeds, brightness []float64) WindowStats {
	speed := Summarize(speeds)
	bright := Summarize(brightness)

	theme := "light"
	if last.Dark {
		theme = "dark"
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   last.Frame,
		FieldTime:        last.FieldTime,
		Frames:           c.frames,

		Particles: last.Particles,
		Theme:     theme,

		ConnectionsMax: c.connectionsMax,
		PointerFrames:  c.pointerFrames,

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP10:  speed.P10,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,

		BrightnessMean: bright.Mean,
		BrightnessStd:  bright.Std,
	}
	if c.frames > 0 {
		stats.ConnectionsMean = float64(c.connectionsSum) / float64(c.frames)
		stats.RepelledMean = float64(c.repelledSum) / float64(c.frames)
	}

	// Reset for next window
	c.windowStartFrame = last.Frame
	c.frames = 0
	c.connectionsSum = 0
	c.connectionsMax = 0
	c.repelledSum = 0
	c.pointerFrames = 0

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() int64 {
	return c.windowDurationFrames
}
