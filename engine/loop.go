package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Loop drives a field frame by frame. Start runs frames on a ticker until
// the context ends or Stop is called; Step runs exactly one frame.
//
// A panic inside a frame is recovered here: the loop stops for good and Err
// reports ErrFrameFailed. The last completed frame stays on the surface.
type Loop struct {
	field    *Field
	interval time.Duration

	mu       sync.Mutex
	stopped  bool
	err      error
	frames   int64
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a stopped-until-started loop for f. An interval of zero
// runs frames back to back.
func NewLoop(f *Field, interval time.Duration) *Loop {
	return &Loop{
		field:    f,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// IntervalFor returns the frame interval for a target frame rate.
func IntervalFor(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

// Step runs one frame. It reports false, without drawing, once the loop
// has been stopped or has failed, or while Start or another loop is
// driving the same field.
func (l *Loop) Step() bool {
	return l.TryStep() == nil
}

// TryStep runs one frame and says why it did not. It returns
// ErrAlreadyRunning while the field is claimed by a running loop, the
// frame error after a failure and ErrStopped after Stop.
func (l *Loop) TryStep() error {
	if !l.field.claim() {
		return ErrAlreadyRunning
	}
	defer l.field.release()
	return l.step()
}

// step runs one frame; the caller holds the field claim.
func (l *Loop) step() error {
	l.mu.Lock()
	if l.stopped {
		err := l.err
		l.mu.Unlock()
		if err == nil {
			err = ErrStopped
		}
		return err
	}
	frame := l.frames + 1
	l.mu.Unlock()

	if err := l.runFrame(frame); err != nil {
		slog.Error("frame failed, stopping loop", "frame", frame, "error", err)
		l.mu.Lock()
		l.err = err
		l.mu.Unlock()
		l.Stop()
		return err
	}

	l.mu.Lock()
	l.frames++
	l.mu.Unlock()
	return nil
}

func (l *Loop) runFrame(frame int64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: frame %d: %v", ErrFrameFailed, frame, r)
		}
	}()
	l.field.Frame()
	return nil
}

// Start runs frames until ctx is done, Stop is called or a frame fails.
// It blocks, returns nil on a clean stop and the frame error on failure.
// Only one loop may run a field at a time.
func (l *Loop) Start(ctx context.Context) error {
	if !l.field.claim() {
		return ErrAlreadyRunning
	}
	defer l.field.release()

	var tick <-chan time.Time
	if l.interval > 0 {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-l.stop:
				return l.Err()
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return nil
			case <-l.stop:
				return l.Err()
			default:
			}
		}

		if err := l.step(); err != nil {
			return l.Err()
		}
	}
}

// Stop ends the loop. Later calls to Step do nothing.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.stopOnce.Do(func() { close(l.stop) })
}

// Stopped reports whether the loop has been stopped or has failed.
func (l *Loop) Stopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Err returns the frame failure that stopped the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Frames returns the number of frames completed.
func (l *Loop) Frames() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}
