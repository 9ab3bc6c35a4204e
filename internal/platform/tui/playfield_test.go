package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/session"
)

func testLayout() Layout {
	return Layout{
		Lanes:            4,
		LaneWidth:        3,
		LaneSpacing:      1,
		RowsPerSecond:    10,
		HitRowFromBottom: 2,
		Labels:           []string{"d", "f", "j", "k"},
		LaneChar:         '|',
		HitLineChar:      '=',
		NoteChar:         '#',
		BodyChar:         ':',
		HeadChar:         '@',
	}
}

func TestLayoutGeometry(t *testing.T) {
	l := testLayout()
	if got := l.Width(); got != 17 {
		t.Errorf("Width() = %d, expected 17", got)
	}

	tests := []struct {
		lane int
		x    int
	}{
		{0, 1},
		{1, 5},
		{3, 13},
	}
	for _, tt := range tests {
		if got := l.LaneX(tt.lane); got != tt.x {
			t.Errorf("LaneX(%d) = %d, expected %d", tt.lane, got, tt.x)
		}
	}

	area := core.NewRect(0, 0, 17, 20)
	if got := l.HitRow(area); got != 18 {
		t.Errorf("HitRow() = %d, expected 18", got)
	}
	if got := l.RowFor(area, 500, 0); got != 13 {
		t.Errorf("RowFor(500, 0) = %d, expected 13", got)
	}
	if got := l.RowFor(area, 0, 500); got != 23 {
		t.Errorf("RowFor(0, 500) = %d, expected 23", got)
	}
}

func TestNewLayoutFallbacks(t *testing.T) {
	cfg := config.Default()
	cfg.Visual.NoteChar = ""
	cfg.Visual.LaneWidth = 0

	l := NewLayout(cfg, 4, nil)
	if l.NoteChar != '█' {
		t.Errorf("NoteChar = %q, expected '█'", l.NoteChar)
	}
	if l.LaneWidth != 1 {
		t.Errorf("LaneWidth = %d, expected 1", l.LaneWidth)
	}
	if l.HitLineChar != '═' {
		t.Errorf("HitLineChar = %q, expected '═'", l.HitLineChar)
	}
}

func TestDrawPlayfieldTap(t *testing.T) {
	l := testLayout()
	s := core.NewScreen(17, 20)
	snap := session.Snapshot{
		State:    session.Playing,
		KeyCount: 4,
		Notes:    []session.NoteView{{Index: 0, Column: 1, TimeMs: 500, EndMs: 500}},
		Held:     []bool{false, true, false, false},
	}

	DrawPlayfield(s, snap, l, s.Bounds())

	for x := 5; x < 8; x++ {
		if c := s.GetCell(x, 13); c.Rune != '#' {
			t.Errorf("cell (%d,13) = %q, expected note", x, c.Rune)
		}
	}
	for _, x := range []int{0, 4, 8, 12, 16} {
		if c := s.GetCell(x, 0); c.Rune != '|' || c.Color != core.ColorGray {
			t.Errorf("separator (%d,0) = %+v, expected gray '|'", x, c)
		}
	}
	if c := s.GetCell(1, 18); c.Rune != '=' || c.Color != core.ColorWhite {
		t.Errorf("hit line lane 0 = %+v, expected white '='", c)
	}
	if c := s.GetCell(5, 18); c.Color != core.ColorBrightYellow {
		t.Errorf("hit line lane 1 color = %v, expected bright yellow", c.Color)
	}
	if got := s.Row(19); !strings.Contains(got, "d") || !strings.Contains(got, "k") {
		t.Errorf("label row = %q, expected lane labels", got)
	}
}

func TestDrawPlayfieldHiddenNote(t *testing.T) {
	l := testLayout()
	s := core.NewScreen(17, 20)
	snap := session.Snapshot{
		State:    session.Playing,
		KeyCount: 4,
		Notes: []session.NoteView{{
			Column: 0, TimeMs: 500, EndMs: 500,
			Head: judge.NoteState{Status: judge.Judged, Tier: judge.Marv},
		}},
	}

	DrawPlayfield(s, snap, l, s.Bounds())

	if strings.Contains(s.String(), "#") {
		t.Errorf("judged tap should not be drawn:\n%s", s.String())
	}
}

func TestDrawPlayfieldHoldClampsToHitLine(t *testing.T) {
	l := testLayout()
	s := core.NewScreen(17, 20)
	snap := session.Snapshot{
		SongTime: 200,
		State:    session.Playing,
		KeyCount: 4,
		Notes: []session.NoteView{{
			Column: 2, TimeMs: 0, EndMs: 1000, Hold: true,
			Head:    judge.NoteState{Status: judge.Judged, Tier: judge.Perf},
			Holding: true,
		}},
	}

	DrawPlayfield(s, snap, l, s.Bounds())

	x := l.LaneX(2)
	if c := s.GetCell(x, 18); c.Rune != '@' || c.Color != core.ColorBrightYellow {
		t.Errorf("head = %+v, expected bright yellow '@' on the hit line", c)
	}
	for y := 10; y < 18; y++ {
		if c := s.GetCell(x, y); c.Rune != ':' {
			t.Errorf("body (%d,%d) = %q, expected ':'", x, y, c.Rune)
		}
	}
	if c := s.GetCell(x, 9); c.Rune == ':' {
		t.Errorf("body drawn above the tail at row 9")
	}
}

func TestDrawPlayfieldBanner(t *testing.T) {
	l := testLayout()

	s := core.NewScreen(17, 20)
	DrawPlayfield(s, session.Snapshot{State: session.LeadIn, SongTime: -1500, KeyCount: 4}, l, s.Bounds())
	if got := s.Row(14); !strings.Contains(got, "READY 2") {
		t.Errorf("lead-in banner = %q, expected READY 2", got)
	}

	s = core.NewScreen(17, 20)
	snap := session.Snapshot{
		State:    session.Playing,
		SongTime: 1100,
		KeyCount: 4,
		Last:     judge.Judgment{Tier: judge.Great, AtMs: 1000},
		HasLast:  true,
	}
	DrawPlayfield(s, snap, l, s.Bounds())
	if got := s.Row(14); !strings.Contains(got, "GREAT") {
		t.Errorf("judgment banner = %q, expected GREAT", got)
	}

	s = core.NewScreen(17, 20)
	snap.SongTime = 1000 + judgmentFlashMs
	DrawPlayfield(s, snap, l, s.Bounds())
	if got := s.Row(14); strings.Contains(got, "GREAT") {
		t.Errorf("judgment banner still shown after %dms", judgmentFlashMs)
	}
}

func TestLaneColorSymmetry(t *testing.T) {
	for _, lanes := range []int{4, 5, 6, 7} {
		for i := 0; i < lanes; i++ {
			a, b := laneColor(i, lanes), laneColor(lanes-1-i, lanes)
			if a != b {
				t.Errorf("laneColor(%d, %d) = %v, mirror = %v", i, lanes, a, b)
			}
		}
	}
	if got := laneColor(3, 7); got != core.ColorBrightYellow {
		t.Errorf("center lane color = %v, expected bright yellow", got)
	}
}
