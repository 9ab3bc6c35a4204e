package timing

import (
	"fmt"
	"time"
)

// Source identifies which clock currently drives song time.
type Source uint8

const (
	SourceStopwatch Source = iota // lead-in, or audio not yet audible
	SourceAudio                   // audio position + offset
	SourceWall                    // audio ended, extrapolating on wall time
)

func (s Source) String() string {
	switch s {
	case SourceStopwatch:
		return "stopwatch"
	case SourceAudio:
		return "audio"
	case SourceWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Config configures an Engine.
type Config struct {
	Audio    AudioClock
	Wall     WallClock // nil means SystemClock
	OffsetMs int64     // added to the audio position
	LeadInMs int64     // song time starts at -LeadInMs
}

// Engine converts clocks into a non-decreasing song time in milliseconds.
// It is not safe for concurrent use; the game loop is its only caller.
type Engine struct {
	audio    AudioClock
	wall     WallClock
	offsetMs int64
	leadInMs int64

	origin  time.Time
	source  Source
	started bool

	sampled   bool
	last      int64
	lastAt    time.Time
	switchAt  int64 // stopwatch value when audio took over
	endBase   int64
	endedAt   time.Time
	glitches  int
	lastAudio int64
}

// NewEngine starts the lead-in stopwatch immediately.
func NewEngine(cfg Config) *Engine {
	wall := cfg.Wall
	if wall == nil {
		wall = SystemClock{}
	}
	leadIn := cfg.LeadInMs
	if leadIn < 0 {
		leadIn = 0
	}
	now := wall.Now()
	return &Engine{
		audio:    cfg.Audio,
		wall:     wall,
		offsetMs: cfg.OffsetMs,
		leadInMs: leadIn,
		origin:   now,
		last:     -leadIn,
		lastAt:   now,
	}
}

// StartAudio starts the audio clock. Calling it again is a no-op.
func (e *Engine) StartAudio() error {
	if e.started || e.audio == nil {
		return nil
	}
	e.started = true
	if err := e.audio.Start(); err != nil {
		return fmt.Errorf("timing: audio start: %w", err)
	}
	return nil
}

// StopAudio halts playback if the clock supports it.
func (e *Engine) StopAudio() {
	if s, ok := e.audio.(Stopper); ok {
		s.Stop()
	}
}

// SongTime samples the clocks and returns the current song time.
func (e *Engine) SongTime() int64 {
	now := e.wall.Now()
	t := e.derive(now)
	if e.sampled && t < e.last {
		t = e.last
	}
	e.sampled = true
	e.last = t
	e.lastAt = now
	return t
}

func (e *Engine) derive(now time.Time) int64 {
	switch e.source {
	case SourceStopwatch:
		if e.started && e.audio != nil {
			if pos := e.audio.Position(); pos > 0 {
				e.source = SourceAudio
				e.switchAt = e.stopwatch(now)
				e.lastAudio = pos.Milliseconds() + e.offsetMs
				return max(e.lastAudio, e.switchAt)
			}
		}
		// also covers a track that ended without ever becoming audible
		return e.stopwatch(now)

	case SourceAudio:
		if e.audio.Ended() {
			e.source = SourceWall
			e.endBase = e.last
			e.endedAt = now
			return e.endBase
		}
		t := e.audio.Position().Milliseconds() + e.offsetMs
		if t < e.lastAudio {
			e.glitches++
		}
		e.lastAudio = t
		return t

	default:
		return e.endBase + now.Sub(e.endedAt).Milliseconds()
	}
}

func (e *Engine) stopwatch(now time.Time) int64 {
	return now.Sub(e.origin).Milliseconds() - e.leadInMs
}

// SongTimeAt maps a wall-clock capture instant onto song time using the
// most recent sample. Instants after the sample map to the sample itself.
func (e *Engine) SongTimeAt(t time.Time) int64 {
	if !t.Before(e.lastAt) {
		return e.last
	}
	return e.last - e.lastAt.Sub(t).Milliseconds()
}

// Last returns the most recent sample without touching the clocks.
func (e *Engine) Last() int64 { return e.last }

// Source reports which clock drives song time.
func (e *Engine) Source() Source { return e.source }

// SwitchPoint returns the stopwatch value at which audio took over.
func (e *Engine) SwitchPoint() int64 { return e.switchAt }

// Glitches counts backward jumps reported by the audio clock.
func (e *Engine) Glitches() int { return e.glitches }

// AudioStarted reports whether StartAudio has been called.
func (e *Engine) AudioStarted() bool { return e.started }

// AudioEnded reports whether the track has finished.
func (e *Engine) AudioEnded() bool {
	return e.audio != nil && e.started && e.audio.Ended()
}

// Offset returns the fixed latency offset.
func (e *Engine) Offset() int64 { return e.offsetMs }

// LeadIn returns the configured lead-in.
func (e *Engine) LeadIn() int64 { return e.leadInMs }
