// Package session runs the per-tick game loop: it samples song time, feeds
// captured input to the judgment engine, sweeps expired notes, applies
// scoring and decides when play ends.
package session

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/input"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
	"github.com/vovakirdan/termania/internal/timing"
)

// State of a session. Cleared, Failed and Aborted are terminal.
type State uint8

const (
	LeadIn State = iota
	Playing
	Cleared
	Failed
	Aborted
)

func (s State) String() string {
	switch s {
	case LeadIn:
		return "lead-in"
	case Playing:
		return "playing"
	case Cleared:
		return "cleared"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Terminal reports whether the session has ended.
func (s State) Terminal() bool {
	return s >= Cleared
}

const (
	DefaultEndGraceMs = 2000
	DefaultPreloadMs  = 1500
)

// Options configures a Session.
type Options struct {
	Judge judge.Options
	Rules scoring.Rules

	// EndGraceMs is how long play continues after the last note end.
	EndGraceMs int64

	// PreloadMs is how far ahead of song time notes enter the snapshot.
	PreloadMs int64

	// RecordTrace keeps every processed tick for Replay.
	RecordTrace bool

	Logger *log.Logger
}

// DefaultOptions returns the stock windows, rules and grace.
func DefaultOptions() Options {
	return Options{
		Judge:      judge.DefaultOptions(),
		Rules:      scoring.DefaultRules(),
		EndGraceMs: DefaultEndGraceMs,
		PreloadMs:  DefaultPreloadMs,
	}
}

// Session is the explicitly owned context of one play-through.
// Tick must be called from a single goroutine; Abort may be called from any.
type Session struct {
	bm    *beatmap.Beatmap
	clock *timing.Engine
	queue *input.Queue
	opts  Options
	log   *log.Logger

	judge *judge.Engine
	score *scoring.State

	state   State
	abort   atomic.Bool
	ticks   int64
	held    []bool
	last    judge.Judgment
	hasLast bool
	first   int // notes before first ended long before song time
	lastEnd int64

	trace []TraceTick
	final Snapshot
}

// New prepares a session over a validated beatmap. The session plays a
// time-ordered copy of the notes, so bm is left untouched. clock may be nil
// for sessions driven only through Advance.
func New(bm *beatmap.Beatmap, clock *timing.Engine, queue *input.Queue, opts Options) (*Session, error) {
	sorted := *bm
	sorted.Notes = append([]beatmap.Note(nil), bm.Notes...)
	sorted.SortNotes()
	bm = &sorted

	if err := bm.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := opts.Judge.Windows.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := opts.Judge.TailWindows.Validate(); err != nil {
		return nil, fmt.Errorf("session: tail windows: %w", err)
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if opts.EndGraceMs < 0 {
		opts.EndGraceMs = 0
	}
	if opts.PreloadMs <= 0 {
		opts.PreloadMs = DefaultPreloadMs
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if queue == nil {
		queue = input.NewQueue(input.DefaultQueueSize)
	}
	return &Session{
		bm:    bm,
		clock: clock,
		queue: queue,
		opts:  opts,
		log:   logger,
		judge: judge.NewEngine(bm, opts.Judge),
		score: scoring.NewState(opts.Rules),
		held:  make([]bool, bm.KeyCount),

		lastEnd: bm.LastEnd(),
	}, nil
}

// Tick runs one pass of the loop against the live clocks and returns the
// resulting snapshot. After a terminal state it returns the final snapshot
// and mutates nothing.
func (s *Session) Tick() Snapshot {
	if s.state.Terminal() {
		return s.final
	}
	if s.clock == nil {
		panic("session: Tick without a clock")
	}
	now := s.clock.SongTime()

	drained := s.queue.Drain()
	events := make([]TraceEvent, len(drained))
	for i, ev := range drained {
		events[i] = TraceEvent{Column: ev.Column, Pressed: ev.Pressed, SongMs: s.clock.SongTimeAt(ev.At)}
	}
	return s.Advance(now, events)
}

// Advance runs one pass of the loop at song time now with events already
// mapped onto song time and ordered by capture. Tick and Replay both go
// through here, so a recorded trace reproduces a session exactly.
func (s *Session) Advance(now int64, events []TraceEvent) Snapshot {
	if s.state.Terminal() {
		return s.final
	}
	s.ticks++
	if s.opts.RecordTrace {
		s.trace = append(s.trace, TraceTick{SongMs: now, Events: append([]TraceEvent(nil), events...)})
	}

	if s.state == LeadIn && now >= 0 {
		s.state = Playing
		s.log.Info("playing", "title", s.bm.Title(), "notes", len(s.bm.Notes))
		if s.clock != nil {
			if err := s.clock.StartAudio(); err != nil {
				s.log.Warn("audio did not start, continuing on the stopwatch", "err", err)
			}
		}
	}

	for _, ev := range events {
		if ev.Column < 0 || ev.Column >= len(s.held) {
			continue
		}
		s.held[ev.Column] = ev.Pressed
		if ev.Pressed {
			s.judge.OnKeyDown(ev.Column, ev.SongMs)
		} else {
			s.judge.OnKeyUp(ev.Column, ev.SongMs)
		}
	}

	s.judge.Sweep(now)

	for _, j := range s.judge.TakeJudgments() {
		s.score.Apply(j)
		s.last, s.hasLast = j, true
		s.log.Debug("judgment", "tier", j.Tier, "column", j.Column, "note", j.NoteIndex,
			"delta", j.DeltaMs, "tail", j.Tail, "combo", s.score.Combo())
	}

	switch {
	case s.score.Failed():
		s.finish(Failed, now)
	case s.judge.Done() && now > s.lastEnd+s.opts.EndGraceMs:
		s.finish(Cleared, now)
	case s.abort.Load():
		s.finish(Aborted, now)
	}

	snap := s.snapshot(now)
	if s.state.Terminal() {
		s.final = snap
	}
	return snap
}

func (s *Session) finish(st State, now int64) {
	s.state = st
	if s.clock != nil {
		s.clock.StopAudio()
	}
	sum := s.score.Summary()
	s.log.Info("session ended", "state", st, "song_ms", now, "score", sum.Score,
		"accuracy", fmt.Sprintf("%.2f", sum.Accuracy), "max_combo", sum.MaxCombo,
		"dropped_input", s.queue.Dropped())
}

// Abort requests termination. It takes effect at the end of the next tick.
func (s *Session) Abort() {
	s.abort.Store(true)
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Summary returns the current score aggregate.
func (s *Session) Summary() scoring.Summary { return s.score.Summary() }

// Beatmap returns the chart being played.
func (s *Session) Beatmap() *beatmap.Beatmap { return s.bm }

// Queue returns the input queue fed by the input source.
func (s *Session) Queue() *input.Queue { return s.queue }

// Judge exposes per-note state for inspection.
func (s *Session) Judge() *judge.Engine { return s.judge }

// Ticks counts executed loop passes.
func (s *Session) Ticks() int64 { return s.ticks }

// Trace returns the recorded ticks when RecordTrace is set.
func (s *Session) Trace() []TraceTick { return s.trace }
