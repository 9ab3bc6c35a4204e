// Package timing derives the authoritative song time from an audio clock,
// a wall-clock stopwatch and a fixed latency offset.
package timing

import "time"

// AudioClock reports playback progress of the music track.
// Position must be safe to call from the game loop goroutine while the audio
// device runs on its own goroutine.
type AudioClock interface {
	// Start begins playback. It is called once, when the lead-in ends.
	Start() error

	// Position returns how far playback has progressed. Zero until the
	// device has actually consumed samples.
	Position() time.Duration

	// Ended reports that the track finished or the device stopped for good.
	Ended() bool
}

// Stopper is implemented by audio clocks that can be halted early.
type Stopper interface {
	Stop()
}

// WallClock supplies monotonic wall time.
type WallClock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a WallClock advanced explicitly. Used by tests and replays.
type ManualClock struct {
	t time.Time
}

// NewManualClock starts a manual clock at an arbitrary fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}
