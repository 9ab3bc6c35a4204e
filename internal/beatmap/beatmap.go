// Package beatmap defines the in-memory chart model shared by the format
// parsers and the gameplay core. A Beatmap is built once by a parser,
// validated, and then treated as read-only for the rest of a session.
package beatmap

import (
	"errors"
	"fmt"
	"sort"
)

// Supported key counts.
const (
	MinKeys = 4
	MaxKeys = 7
)

// EndPadding is added after the last note end to compute the total length.
const EndPadding = 2000

// Validation errors. Wrapped errors carry the offending note.
var (
	ErrNoNotes          = errors.New("beatmap: no notes")
	ErrKeyCount         = errors.New("beatmap: unsupported key count")
	ErrColumnOutOfRange = errors.New("beatmap: column out of range")
	ErrUnsorted         = errors.New("beatmap: notes not in time order")
	ErrDuplicateTime    = errors.New("beatmap: duplicate note time within column")
	ErrHoldLength       = errors.New("beatmap: hold end must be after start")
	ErrHoldOverlap      = errors.New("beatmap: hold overlaps next note in column")
)

// NoteKind distinguishes taps from holds.
type NoteKind uint8

const (
	Tap NoteKind = iota
	Hold
)

func (k NoteKind) String() string {
	if k == Hold {
		return "hold"
	}
	return "tap"
}

// Note is a single chart event. For holds, EndMs is the release time.
type Note struct {
	TimeMs int64
	Column int
	Kind   NoteKind
	EndMs  int64
}

// End returns the last time at which the note has any meaning.
func (n Note) End() int64 {
	if n.Kind == Hold {
		return n.EndMs
	}
	return n.TimeMs
}

// IsHold reports whether the note has a release judgment.
func (n Note) IsHold() bool {
	return n.Kind == Hold
}

// TimingPoint is kept for display and tooling; runtime timing never uses it.
type TimingPoint struct {
	TimeMs      int64
	MsPerBeat   float64
	Meter       int
	Uninherited bool
}

// BPM returns the tempo for uninherited points, or 0.
func (tp TimingPoint) BPM() float64 {
	if !tp.Uninherited || tp.MsPerBeat <= 0 {
		return 0
	}
	return 60000 / tp.MsPerBeat
}

// Metadata describes the song and difficulty.
type Metadata struct {
	Title   string
	Artist  string
	Version string
	Creator string
	Source  string // file the chart was read from
}

// Beatmap is an ordered, validated note list plus metadata.
type Beatmap struct {
	Metadata     Metadata
	KeyCount     int
	AudioPath    string
	AudioLeadIn  int64
	TimingPoints []TimingPoint
	Notes        []Note
}

// SortNotes orders notes by time, then column. Parsers call this before Validate.
func (b *Beatmap) SortNotes() {
	sort.SliceStable(b.Notes, func(i, j int) bool {
		if b.Notes[i].TimeMs != b.Notes[j].TimeMs {
			return b.Notes[i].TimeMs < b.Notes[j].TimeMs
		}
		return b.Notes[i].Column < b.Notes[j].Column
	})
}

// Validate enforces the note list invariants the core relies on.
// Notes must already be in global time order.
func (b *Beatmap) Validate() error {
	if b.KeyCount < MinKeys || b.KeyCount > MaxKeys {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrKeyCount, b.KeyCount, MinKeys, MaxKeys)
	}
	if len(b.Notes) == 0 {
		return ErrNoNotes
	}

	last := make([]int, b.KeyCount)
	for c := range last {
		last[c] = -1
	}

	for i, n := range b.Notes {
		if n.Column < 0 || n.Column >= b.KeyCount {
			return fmt.Errorf("%w: note %d column %d", ErrColumnOutOfRange, i, n.Column)
		}
		if i > 0 && n.TimeMs < b.Notes[i-1].TimeMs {
			return fmt.Errorf("%w: note %d at %dms after %dms", ErrUnsorted, i, n.TimeMs, b.Notes[i-1].TimeMs)
		}
		if n.Kind == Hold && n.EndMs <= n.TimeMs {
			return fmt.Errorf("%w: note %d at %dms", ErrHoldLength, i, n.TimeMs)
		}
		if p := last[n.Column]; p >= 0 {
			prev := b.Notes[p]
			switch {
			case n.TimeMs == prev.TimeMs:
				return fmt.Errorf("%w: column %d at %dms", ErrDuplicateTime, n.Column, n.TimeMs)
			case prev.Kind == Hold && prev.EndMs >= n.TimeMs:
				return fmt.Errorf("%w: column %d at %dms", ErrHoldOverlap, n.Column, n.TimeMs)
			}
		}
		last[n.Column] = i
	}
	return nil
}

// LastEnd returns the latest note end time.
func (b *Beatmap) LastEnd() int64 {
	var end int64
	for _, n := range b.Notes {
		if e := n.End(); e > end {
			end = e
		}
	}
	return end
}

// TotalLength is the chart length including end padding.
func (b *Beatmap) TotalLength() int64 {
	if len(b.Notes) == 0 {
		return 0
	}
	return b.LastEnd() + EndPadding
}

// HoldCount returns how many notes are holds.
func (b *Beatmap) HoldCount() int {
	count := 0
	for _, n := range b.Notes {
		if n.Kind == Hold {
			count++
		}
	}
	return count
}

// JudgeableEnds counts heads plus hold tails.
func (b *Beatmap) JudgeableEnds() int {
	return len(b.Notes) + b.HoldCount()
}

// InitialBPM returns the tempo of the first uninherited timing point.
func (b *Beatmap) InitialBPM() float64 {
	for _, tp := range b.TimingPoints {
		if bpm := tp.BPM(); bpm > 0 {
			return bpm
		}
	}
	return 0
}

// Title formats a display title for menus and results.
func (b *Beatmap) Title() string {
	m := b.Metadata
	title := m.Title
	if m.Artist != "" {
		title = m.Artist + " - " + title
	}
	if m.Version != "" {
		title += " [" + m.Version + "]"
	}
	return title
}

// Key identifies a difficulty across sessions, independent of where the
// file lives. Results are stored under it.
func (b *Beatmap) Key() string {
	m := b.Metadata
	return fmt.Sprintf("%s|%s|%s|%dK", m.Artist, m.Title, m.Version, b.KeyCount)
}
