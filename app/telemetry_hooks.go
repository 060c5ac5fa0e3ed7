package app

import (
	"log/slog"

	"github.com/pthm-cable/ambient/engine"
)

// onFrame runs after every field frame.
func (a *App) onFrame(stats engine.FrameStats) {
	a.collector.Record(stats.Sample())
	a.flushTelemetry(stats)

	if a.opts.MaxFrames > 0 && stats.Frame >= a.opts.MaxFrames {
		slog.Info("max frames reached", "frame", stats.Frame)
		a.done = true
		a.loop.Stop()
	}
}

// flushTelemetry closes the stats window when it is due.
func (a *App) flushTelemetry(stats engine.FrameStats) {
	if !a.collector.ShouldFlush(stats.Frame) {
		return
	}

	speeds, brightness := a.field.Samples()
	window := a.collector.Flush(stats.Sample(), speeds, brightness)
	perfStats := a.field.Perf().Stats()

	if a.opts.LogStats {
		window.LogStats()
		perfStats.LogStats()
	}

	if a.output != nil {
		if err := a.output.WriteWindow(window); err != nil {
			slog.Error("failed to write frame stats", "error", err)
		}
		if err := a.output.WritePerf(perfStats, window.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
