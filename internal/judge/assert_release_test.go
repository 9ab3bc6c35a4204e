//go:build !termania_debug

package judge

import "testing"

func TestDoubleResolveIsNoOp(t *testing.T) {
	e := newEngine(testOptions(), tap(1000, 0))
	e.OnKeyDown(0, 1000)
	e.TakeJudgments()

	e.resolveHead(0, NoteState{Status: Missed, Tier: Miss}, Judgment{Tier: Miss})
	if js := e.TakeJudgments(); len(js) != 0 {
		t.Errorf("second resolution emitted %+v", js)
	}
	if s := e.Head(0); s.Status != Judged || s.Tier != Marv {
		t.Errorf("Head(0) = %s, expected judged(MARV) kept", s)
	}
	if e.Resolved() != 1 {
		t.Errorf("Resolved() = %d, expected 1", e.Resolved())
	}
}
