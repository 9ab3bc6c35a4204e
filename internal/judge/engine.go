package judge

import (
	"github.com/vovakirdan/termania/internal/beatmap"
)

// Options configures an Engine.
type Options struct {
	Windows     Windows // heads and taps
	TailWindows Windows // hold releases
	EmptyPress  EmptyPress
}

// DefaultOptions uses DefaultWindows and an 80ms release tolerance.
func DefaultOptions() Options {
	w := DefaultWindows()
	return Options{Windows: w, TailWindows: w.Widen(80)}
}

// Engine owns the runtime state of every note end of one beatmap.
// All methods must be called from a single goroutine.
type Engine struct {
	notes []beatmap.Note
	opts  Options

	head []NoteState
	tail []NoteState // only meaningful for holds

	columns [][]int // note indices per column, time ascending
	cursor  []int   // per column: position in columns before which all heads are resolved
	active  []int   // per column: hold whose head was hit and tail is pending, or -1

	total    int
	resolved int
	out      []Judgment
}

// NewEngine indexes the validated beatmap. The beatmap is never modified.
func NewEngine(bm *beatmap.Beatmap, opts Options) *Engine {
	e := &Engine{
		notes:   bm.Notes,
		opts:    opts,
		head:    make([]NoteState, len(bm.Notes)),
		tail:    make([]NoteState, len(bm.Notes)),
		columns: make([][]int, bm.KeyCount),
		cursor:  make([]int, bm.KeyCount),
		active:  make([]int, bm.KeyCount),
	}
	for c := range e.active {
		e.active[c] = -1
	}
	for i, n := range bm.Notes {
		e.columns[n.Column] = append(e.columns[n.Column], i)
		e.total++
		if n.Kind == beatmap.Hold {
			e.total++
		}
	}
	return e
}

// OnKeyDown judges a press in column at song time t.
// It returns false for an empty press.
func (e *Engine) OnKeyDown(column int, t int64) bool {
	if column < 0 || column >= len(e.columns) {
		return false
	}
	if e.active[column] >= 0 {
		// a second press implies the held key was released first
		e.OnKeyUp(column, t)
	}

	best := -1
	var bestDist int64
	idx := e.columns[column]
	for k := e.cursor[column]; k < len(idx); k++ {
		i := idx[k]
		if e.head[i].Terminal() {
			continue
		}
		delta := t - e.notes[i].TimeMs
		if delta > e.opts.Windows.Miss {
			continue // expired, the sweep will take it
		}
		if -delta > e.opts.Windows.Miss {
			break
		}
		dist := abs(delta)
		if best >= 0 && dist >= bestDist {
			// later notes are only further away; ties keep the earlier note
			break
		}
		best, bestDist = i, dist
	}

	if best < 0 {
		if e.opts.EmptyPress == EmptyPressMiss {
			e.out = append(e.out, Judgment{
				Tier:      Miss,
				Column:    column,
				NoteIndex: -1,
				AtMs:      t,
				Ghost:     true,
			})
		}
		return false
	}

	n := e.notes[best]
	delta := t - n.TimeMs
	tier := e.opts.Windows.Classify(delta)
	e.resolveHead(best, NoteState{Status: Judged, Tier: tier}, Judgment{
		Tier:       tier,
		Column:     column,
		NoteIndex:  best,
		NoteTimeMs: n.TimeMs,
		DeltaMs:    delta,
		AtMs:       t,
	})
	e.advance(column)
	return true
}

// OnKeyUp judges the release of an active hold in column at song time t.
// Releases with no active hold are ignored.
func (e *Engine) OnKeyUp(column int, t int64) {
	if column < 0 || column >= len(e.columns) {
		return
	}
	i := e.active[column]
	if i < 0 {
		return
	}
	e.active[column] = -1

	end := e.notes[i].EndMs
	delta := t - end
	tier := Miss
	if delta >= -e.opts.TailWindows.Miss {
		tier = e.opts.TailWindows.Classify(delta)
	}
	e.resolveTail(i, NoteState{Status: Judged, Tier: tier}, Judgment{
		Tier:       tier,
		Column:     column,
		NoteIndex:  i,
		NoteTimeMs: end,
		Tail:       true,
		DeltaMs:    delta,
		AtMs:       t,
	})
}

// Sweep misses every pending end whose window closed before songTime.
func (e *Engine) Sweep(songTime int64) {
	for c, idx := range e.columns {
		if i := e.active[c]; i >= 0 && e.notes[i].EndMs+e.opts.TailWindows.Miss < songTime {
			e.active[c] = -1
			e.resolveTail(i, NoteState{Status: Missed, Tier: Miss}, e.timeout(i, true, songTime))
		}

		for k := e.cursor[c]; k < len(idx); k++ {
			i := idx[k]
			if e.head[i].Terminal() {
				continue
			}
			if e.notes[i].TimeMs+e.opts.Windows.Miss >= songTime {
				break
			}
			e.resolveHead(i, NoteState{Status: Missed, Tier: Miss}, e.timeout(i, false, songTime))
		}
		e.advance(c)
	}
}

func (e *Engine) timeout(i int, tail bool, songTime int64) Judgment {
	n := e.notes[i]
	at := n.TimeMs
	if tail {
		at = n.EndMs
	}
	return Judgment{
		Tier:       Miss,
		Column:     n.Column,
		NoteIndex:  i,
		NoteTimeMs: at,
		Tail:       tail,
		AtMs:       songTime,
		Timeout:    true,
	}
}

// resolveHead transitions a head and, for holds, decides the tail's fate.
func (e *Engine) resolveHead(i int, s NoteState, j Judgment) {
	if e.head[i].Terminal() {
		defect("head of note %d resolved twice (%s then %s)", i, e.head[i], s)
		return
	}
	e.head[i] = s
	e.resolved++
	e.out = append(e.out, j)

	if e.notes[i].Kind != beatmap.Hold {
		return
	}
	if s.Tier == Miss {
		// a missed head can never be released on time
		tj := e.timeout(i, true, j.AtMs)
		tj.Timeout = j.Timeout
		e.resolveTail(i, NoteState{Status: Missed, Tier: Miss}, tj)
		return
	}
	e.active[e.notes[i].Column] = i
}

func (e *Engine) resolveTail(i int, s NoteState, j Judgment) {
	if e.notes[i].Kind != beatmap.Hold {
		defect("tail resolved on tap note %d", i)
		return
	}
	if e.tail[i].Terminal() {
		defect("tail of note %d resolved twice (%s then %s)", i, e.tail[i], s)
		return
	}
	e.tail[i] = s
	e.resolved++
	e.out = append(e.out, j)
}

func (e *Engine) advance(c int) {
	idx := e.columns[c]
	for e.cursor[c] < len(idx) && e.head[idx[e.cursor[c]]].Terminal() {
		e.cursor[c]++
	}
}

// TakeJudgments returns judgments emitted since the last call, in order.
func (e *Engine) TakeJudgments() []Judgment {
	if len(e.out) == 0 {
		return nil
	}
	out := e.out
	e.out = nil
	return out
}

// Head returns the state of note i's head (or tap).
func (e *Engine) Head(i int) NoteState { return e.head[i] }

// Tail returns the state of hold i's tail. Taps always report Pending.
func (e *Engine) Tail(i int) NoteState { return e.tail[i] }

// Active returns the hold currently held in column, or -1.
func (e *Engine) Active(column int) int {
	if column < 0 || column >= len(e.active) {
		return -1
	}
	return e.active[column]
}

// Resolved counts resolved note ends.
func (e *Engine) Resolved() int { return e.resolved }

// Total counts judgeable note ends: one per tap, two per hold.
func (e *Engine) Total() int { return e.total }

// Done reports whether every note end is resolved.
func (e *Engine) Done() bool { return e.resolved == e.total }

// Notes returns the underlying note list. Callers must not modify it.
func (e *Engine) Notes() []beatmap.Note { return e.notes }

// Options returns the windows in use.
func (e *Engine) Options() Options { return e.opts }

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
