package session

import (
	"github.com/vovakirdan/termania/internal/beatmap"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/scoring"
)

// NoteView is one note as the renderer sees it.
type NoteView struct {
	Index   int
	Column  int
	TimeMs  int64
	EndMs   int64
	Hold    bool
	Head    judge.NoteState
	Tail    judge.NoteState
	Holding bool // head hit, tail pending
}

// Hidden reports whether the note is finished and should not be drawn.
// Missed notes stay visible until they scroll off.
func (n NoteView) Hidden() bool {
	if n.Hold {
		return n.Tail.Status == judge.Judged
	}
	return n.Head.Status == judge.Judged
}

// Snapshot is the immutable per-tick view handed to the renderer.
type Snapshot struct {
	Tick     int64
	SongTime int64
	State    State
	KeyCount int

	// Notes visible in [SongTime - miss window, SongTime + preload],
	// in time order.
	Notes []NoteView
	Held  []bool

	Last    judge.Judgment
	HasLast bool

	Score    scoring.Summary
	Progress float64 // 0..1 through the chart
	LengthMs int64
	Dropped  int64
}

func (s *Session) snapshot(now int64) Snapshot {
	notes := s.bm.Notes
	behind := now - s.opts.Judge.Windows.Miss
	ahead := now + s.opts.PreloadMs

	for s.first < len(notes) && notes[s.first].End() < behind && s.resolved(s.first) {
		s.first++
	}

	var views []NoteView
	for i := s.first; i < len(notes); i++ {
		n := notes[i]
		if n.TimeMs > ahead {
			break
		}
		if n.End() < behind {
			continue
		}
		active := s.judge.Active(n.Column) == i
		views = append(views, NoteView{
			Index:   i,
			Column:  n.Column,
			TimeMs:  n.TimeMs,
			EndMs:   n.End(),
			Hold:    n.Kind == beatmap.Hold,
			Head:    s.judge.Head(i),
			Tail:    s.judge.Tail(i),
			Holding: active,
		})
	}

	var progress float64
	if s.lastEnd > 0 {
		progress = min(max(float64(now)/float64(s.lastEnd), 0), 1)
	}

	return Snapshot{
		Tick:     s.ticks,
		SongTime: now,
		State:    s.state,
		KeyCount: s.bm.KeyCount,
		Notes:    views,
		Held:     append([]bool(nil), s.held...),
		Last:     s.last,
		HasLast:  s.hasLast,
		Score:    s.score.Summary(),
		Progress: progress,
		LengthMs: s.lastEnd,
		Dropped:  s.queue.Dropped(),
	}
}

func (s *Session) resolved(i int) bool {
	if !s.judge.Head(i).Terminal() {
		return false
	}
	return s.bm.Notes[i].Kind != beatmap.Hold || s.judge.Tail(i).Terminal()
}
