package judge

import (
	"testing"

	"github.com/vovakirdan/termania/internal/beatmap"
)

// testWindows has PERF=±30ms and GREAT=±60ms.
var testWindows = Windows{Marv: 10, Perf: 30, Great: 60, Good: 100, OK: 150, Miss: 200}

func testOptions() Options {
	return Options{Windows: testWindows, TailWindows: testWindows.Widen(50)}
}

func newEngine(opts Options, notes ...beatmap.Note) *Engine {
	return NewEngine(&beatmap.Beatmap{KeyCount: 4, Notes: notes}, opts)
}

func tap(t int64, col int) beatmap.Note {
	return beatmap.Note{TimeMs: t, Column: col, Kind: beatmap.Tap}
}

func hold(t, end int64, col int) beatmap.Note {
	return beatmap.Note{TimeMs: t, Column: col, Kind: beatmap.Hold, EndMs: end}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		delta int64
		want  Tier
	}{
		{0, Marv},
		{10, Marv},
		{-10, Marv},
		{11, Perf},
		{30, Perf},
		{-30, Perf},
		{31, Great},
		{60, Great},
		{61, Good},
		{100, Good},
		{150, OK},
		{-150, OK},
		{151, Miss},
		{200, Miss},
	}
	for _, tt := range tests {
		if got := testWindows.Classify(tt.delta); got != tt.want {
			t.Errorf("Classify(%d) = %s, expected %s", tt.delta, got, tt.want)
		}
	}
}

func TestWindowsValidate(t *testing.T) {
	if err := DefaultWindows().Validate(); err != nil {
		t.Errorf("DefaultWindows().Validate() = %v", err)
	}
	bad := testWindows
	bad.Great = 20
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject a window narrower than the previous tier")
	}
	bad = testWindows
	bad.Marv = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject a zero window")
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers() {
		got, err := ParseTier(tier.String())
		if err != nil || got != tier {
			t.Errorf("ParseTier(%q) = %v, %v", tier.String(), got, err)
		}
	}
	if got, err := ParseTier("great"); err != nil || got != Great {
		t.Errorf("ParseTier(great) = %v, %v", got, err)
	}
	if _, err := ParseTier("awful"); err == nil {
		t.Error("ParseTier(awful) should fail")
	}
}

func TestPressWithinPerfect(t *testing.T) {
	e := newEngine(testOptions(), tap(1000, 1))

	if !e.OnKeyDown(1, 1015) {
		t.Fatal("OnKeyDown() reported an empty press")
	}
	js := e.TakeJudgments()
	if len(js) != 1 {
		t.Fatalf("got %d judgments, expected 1", len(js))
	}
	if js[0].Tier != Perf || js[0].Column != 1 || js[0].NoteTimeMs != 1000 || js[0].DeltaMs != 15 {
		t.Errorf("judgment = %+v", js[0])
	}
	if s := e.Head(0); s.Status != Judged || s.Tier != Perf {
		t.Errorf("Head(0) = %s, expected judged(PERF)", s)
	}
	if !e.Done() {
		t.Error("Done() = false after the only note was judged")
	}
}

func TestNearestNoteSelected(t *testing.T) {
	// MARV narrower than the 5ms delta so the scenario lands in PERF
	opts := testOptions()
	opts.Windows.Marv = 4
	e := newEngine(opts, tap(1000, 0), tap(1040, 0))

	e.OnKeyDown(0, 1035)
	js := e.TakeJudgments()
	if len(js) != 1 {
		t.Fatalf("got %d judgments, expected 1", len(js))
	}
	if js[0].NoteTimeMs != 1040 || js[0].Tier != Perf {
		t.Errorf("judgment = %+v, expected note 1040 judged PERF", js[0])
	}
	if e.Head(0).Terminal() {
		t.Error("note at 1000 must stay pending")
	}
}

func TestEquidistantPicksEarlier(t *testing.T) {
	e := newEngine(testOptions(), tap(1000, 0), tap(1100, 0))

	e.OnKeyDown(0, 1050)
	js := e.TakeJudgments()
	if len(js) != 1 || js[0].NoteIndex != 0 {
		t.Fatalf("judgments = %+v, expected the earlier note", js)
	}
	if js[0].Tier != Great {
		t.Errorf("tier = %s, expected GREAT", js[0].Tier)
	}
}

func TestPressOutsideOKIsMiss(t *testing.T) {
	e := newEngine(testOptions(), tap(1000, 0))

	e.OnKeyDown(0, 820)
	js := e.TakeJudgments()
	if len(js) != 1 || js[0].Tier != Miss || js[0].Timeout {
		t.Fatalf("judgments = %+v, expected one pressed MISS", js)
	}
	if s := e.Head(0); s.Status != Judged || s.Tier != Miss {
		t.Errorf("Head(0) = %s", s)
	}
}

func TestEmptyPress(t *testing.T) {
	t.Run("ignored by default", func(t *testing.T) {
		e := newEngine(testOptions(), tap(1000, 0))
		if e.OnKeyDown(0, 500) {
			t.Error("OnKeyDown() far from any note should be an empty press")
		}
		if js := e.TakeJudgments(); len(js) != 0 {
			t.Errorf("got %d judgments, expected none", len(js))
		}
		if e.OnKeyDown(3, 1000) {
			t.Error("press in an empty column should be an empty press")
		}
	})

	t.Run("miss when configured", func(t *testing.T) {
		opts := testOptions()
		opts.EmptyPress = EmptyPressMiss
		e := newEngine(opts, tap(1000, 0))
		e.OnKeyDown(0, 500)
		js := e.TakeJudgments()
		if len(js) != 1 || !js[0].Ghost || js[0].Tier != Miss || js[0].NoteIndex != -1 {
			t.Fatalf("judgments = %+v, expected one ghost MISS", js)
		}
		if e.Head(0).Terminal() || e.Resolved() != 0 {
			t.Error("ghost miss must not resolve a note")
		}
	})

	t.Run("out of range column", func(t *testing.T) {
		e := newEngine(testOptions(), tap(1000, 0))
		if e.OnKeyDown(9, 1000) || e.OnKeyDown(-1, 1000) {
			t.Error("out of range column should be ignored")
		}
	})
}

func TestSweepMisses(t *testing.T) {
	e := newEngine(testOptions(), tap(1000, 1), tap(1500, 1))

	e.Sweep(1200)
	if js := e.TakeJudgments(); len(js) != 0 {
		t.Fatalf("Sweep(1200) emitted %+v, boundary is exclusive", js)
	}

	e.Sweep(1201)
	js := e.TakeJudgments()
	if len(js) != 1 || js[0].NoteIndex != 0 || !js[0].Timeout || js[0].Tier != Miss {
		t.Fatalf("judgments = %+v, expected timeout miss of first note", js)
	}
	if s := e.Head(0); s.Status != Missed {
		t.Errorf("Head(0) = %s, expected missed", s)
	}

	// a late press cannot reach the swept note
	e.OnKeyDown(1, 1210)
	if js := e.TakeJudgments(); len(js) != 0 {
		t.Errorf("press after sweep produced %+v", js)
	}
	if e.Head(1).Terminal() {
		t.Error("note at 1500 must be pending")
	}
}

func TestJudgedNoteIgnoredBySweep(t *testing.T) {
	e := newEngine(testOptions(), tap(1000, 0))
	e.OnKeyDown(0, 1000)
	e.TakeJudgments()

	e.Sweep(5000)
	if js := e.TakeJudgments(); len(js) != 0 {
		t.Errorf("sweep re-judged a terminal note: %+v", js)
	}
	if e.Resolved() != 1 {
		t.Errorf("Resolved() = %d, expected 1", e.Resolved())
	}
}

func TestHoldLifecycle(t *testing.T) {
	e := newEngine(testOptions(), hold(1000, 2000, 2))

	e.OnKeyDown(2, 1005)
	if e.Active(2) != 0 {
		t.Fatalf("Active(2) = %d, expected 0", e.Active(2))
	}
	e.OnKeyUp(2, 2020)
	js := e.TakeJudgments()
	if len(js) != 2 {
		t.Fatalf("got %d judgments, expected head and tail", len(js))
	}
	if js[0].Tail || js[0].Tier != Marv {
		t.Errorf("head judgment = %+v", js[0])
	}
	// tail windows are widened by 50ms: 20ms lands in MARV
	if !js[1].Tail || js[1].Tier != Marv || js[1].NoteTimeMs != 2000 || js[1].DeltaMs != 20 {
		t.Errorf("tail judgment = %+v", js[1])
	}
	if e.Active(2) != -1 || !e.Done() {
		t.Error("hold should be fully resolved")
	}
}

func TestHoldEarlyRelease(t *testing.T) {
	e := newEngine(testOptions(), hold(1000, 2000, 0))
	e.OnKeyDown(0, 1000)
	e.OnKeyUp(0, 1500)

	js := e.TakeJudgments()
	if len(js) != 2 || !js[1].Tail || js[1].Tier != Miss || js[1].Timeout {
		t.Fatalf("judgments = %+v, expected immediate tail MISS", js)
	}
	if s := e.Tail(0); s.Status != Judged || s.Tier != Miss {
		t.Errorf("Tail(0) = %s", s)
	}
}

func TestHoldNeverReleased(t *testing.T) {
	e := newEngine(testOptions(), hold(1000, 2000, 0))
	e.OnKeyDown(0, 1000)
	e.TakeJudgments()

	e.Sweep(2250)
	if js := e.TakeJudgments(); len(js) != 0 {
		t.Fatalf("tail swept too early: %+v", js)
	}
	e.Sweep(2251)
	js := e.TakeJudgments()
	if len(js) != 1 || !js[0].Tail || !js[0].Timeout {
		t.Fatalf("judgments = %+v, expected tail timeout", js)
	}
	if e.Tail(0).Status != Missed {
		t.Errorf("Tail(0) = %s, expected missed", e.Tail(0))
	}
}

func TestMissedHeadMissesTail(t *testing.T) {
	e := newEngine(testOptions(), hold(1000, 2000, 0), tap(3000, 1))

	e.Sweep(1300)
	js := e.TakeJudgments()
	if len(js) != 2 {
		t.Fatalf("got %d judgments, expected head and tail", len(js))
	}
	if js[0].Tail || !js[1].Tail || js[1].Tier != Miss {
		t.Errorf("judgments = %+v", js)
	}
	if e.Head(0).Status != Missed || e.Tail(0).Status != Missed {
		t.Errorf("states = %s, %s", e.Head(0), e.Tail(0))
	}

	// releasing the key afterwards does nothing
	e.OnKeyUp(0, 1400)
	if js := e.TakeJudgments(); len(js) != 0 {
		t.Errorf("stray release produced %+v", js)
	}
}

func TestRepressDuringHoldReleasesFirst(t *testing.T) {
	e := newEngine(testOptions(), hold(1000, 2000, 0), tap(2500, 0))
	e.OnKeyDown(0, 1000)
	e.OnKeyDown(0, 2495)

	js := e.TakeJudgments()
	if len(js) != 3 {
		t.Fatalf("got %d judgments, expected head, tail, tap", len(js))
	}
	if !js[1].Tail || js[1].Tier != Miss {
		t.Errorf("tail = %+v, expected late release MISS", js[1])
	}
	if js[2].NoteIndex != 1 || js[2].Tier != Marv {
		t.Errorf("tap = %+v", js[2])
	}
}

func TestEveryNoteResolvesExactlyOnce(t *testing.T) {
	notes := []beatmap.Note{
		tap(500, 0), tap(500, 1), hold(700, 1200, 2), tap(900, 0),
		tap(1000, 3), hold(1300, 1600, 1), tap(1400, 0), tap(2000, 2),
	}
	e := newEngine(testOptions(), notes...)

	presses := []struct {
		col  int
		down bool
		at   int64
	}{
		{0, true, 510}, {1, true, 480}, {2, true, 690}, {0, true, 960},
		{2, false, 1000}, {1, true, 1290}, {0, true, 1390}, {1, false, 1620},
	}

	seen := make(map[[2]int]int)
	record := func(js []Judgment) {
		for _, j := range js {
			if j.Ghost {
				continue
			}
			key := [2]int{j.NoteIndex, 0}
			if j.Tail {
				key[1] = 1
			}
			seen[key]++
		}
	}

	var songTime int64
	for _, p := range presses {
		for songTime < p.at {
			songTime += 16
			e.Sweep(songTime)
			record(e.TakeJudgments())
		}
		if p.down {
			e.OnKeyDown(p.col, p.at)
		} else {
			e.OnKeyUp(p.col, p.at)
		}
		record(e.TakeJudgments())
	}
	e.Sweep(10000)
	record(e.TakeJudgments())

	if !e.Done() {
		t.Fatalf("Done() = false, resolved %d of %d", e.Resolved(), e.Total())
	}
	for i, n := range notes {
		if seen[[2]int{i, 0}] != 1 {
			t.Errorf("note %d head judged %d times", i, seen[[2]int{i, 0}])
		}
		wantTail := 0
		if n.IsHold() {
			wantTail = 1
		}
		if seen[[2]int{i, 1}] != wantTail {
			t.Errorf("note %d tail judged %d times, expected %d", i, seen[[2]int{i, 1}], wantTail)
		}
		if !e.Head(i).Terminal() {
			t.Errorf("note %d head still pending", i)
		}
	}
}
