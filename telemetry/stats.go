// Package telemetry collects frame timing and field statistics and writes
// them as structured logs and CSV.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	FieldTime        float64 `csv:"field_time"`
	Frames           int     `csv:"frames"`

	Particles int    `csv:"particles"`
	Theme     string `csv:"theme"`

	// Connections drawn per frame
	ConnectionsMean float64 `csv:"connections_mean"`
	ConnectionsMax  int     `csv:"connections_max"`

	// Pointer interaction
	PointerFrames int     `csv:"pointer_frames"` // Frames with at least one repelled particle
	RepelledMean  float64 `csv:"repelled_mean"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Brightness distribution (sampled at window end)
	BrightnessMean float64 `csv:"brightness_mean"`
	BrightnessStd  float64 `csv:"brightness_std"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample: mean, sample standard deviation and
// the 10th/50th/90th percentiles.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize computes a Distribution. Empty input yields zeros; a single
// value has zero spread.
func Summarize(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	var d Distribution
	if n == 1 {
		d.Mean = values[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)
	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("field_time", s.FieldTime),
		slog.Int("frames", s.Frames),
		slog.Int("particles", s.Particles),
		slog.String("theme", s.Theme),
		slog.Float64("connections_mean", s.ConnectionsMean),
		slog.Int("connections_max", s.ConnectionsMax),
		slog.Int("pointer_frames", s.PointerFrames),
		slog.Float64("repelled_mean", s.RepelledMean),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("brightness_mean", s.BrightnessMean),
		slog.Float64("brightness_std", s.BrightnessStd),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
