package tui

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/vovakirdan/termania/internal/config"
	"github.com/vovakirdan/termania/internal/core"
	"github.com/vovakirdan/termania/internal/judge"
	"github.com/vovakirdan/termania/internal/session"
)

// judgmentFlashMs is how long the last judgment stays on the playfield.
const judgmentFlashMs = 600

// Layout describes how the playfield maps song time onto screen rows.
type Layout struct {
	Lanes            int
	LaneWidth        int
	LaneSpacing      int
	RowsPerSecond    float64
	HitRowFromBottom int
	Labels           []string

	LaneChar    rune
	HitLineChar rune
	NoteChar    rune
	BodyChar    rune
	HeadChar    rune
}

// NewLayout builds a layout from the visual and gameplay settings.
func NewLayout(cfg config.AppConfig, lanes int, labels []string) Layout {
	v := cfg.Visual
	return Layout{
		Lanes:            lanes,
		LaneWidth:        max(v.LaneWidth, 1),
		LaneSpacing:      max(v.LaneSpacing, 0),
		RowsPerSecond:    cfg.Gameplay.ScrollRowsPerSecond,
		HitRowFromBottom: max(cfg.Gameplay.HitLineRowFromBottom, 1),
		Labels:           labels,
		LaneChar:         firstRune(v.LaneChar, '│'),
		HitLineChar:      firstRune(v.HitLineChar, '═'),
		NoteChar:         firstRune(v.NoteChar, '█'),
		BodyChar:         firstRune(v.LongNoteBodyChar, '▓'),
		HeadChar:         firstRune(v.LongNoteHeadChar, '█'),
	}
}

func firstRune(s string, fallback rune) rune {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return fallback
	}
	return r
}

// Width is the playfield width in cells, separators included.
func (l Layout) Width() int {
	return l.Lanes*l.LaneWidth + (l.Lanes+1)*l.LaneSpacing
}

// LaneX returns the first column of lane i relative to the playfield.
func (l Layout) LaneX(i int) int {
	return l.LaneSpacing + i*(l.LaneWidth+l.LaneSpacing)
}

// HitRow returns the hit line row inside area.
func (l Layout) HitRow(area core.Rect) int {
	return area.Bottom() - l.HitRowFromBottom
}

// RowFor maps a note time onto a screen row: the hit line at songTime,
// earlier rows for later notes.
func (l Layout) RowFor(area core.Rect, timeMs, songTime int64) int {
	offset := float64(timeMs-songTime) * l.RowsPerSecond / 1000
	return l.HitRow(area) - int(math.Round(offset))
}

// DrawPlayfield draws lanes, the hit line, key labels, visible notes and the
// latest judgment. It reads nothing but the snapshot.
func DrawPlayfield(s *core.Screen, snap session.Snapshot, l Layout, area core.Rect) {
	if area.W <= 0 || area.H <= 0 {
		return
	}
	x0 := area.X + (area.W-l.Width())/2
	hit := l.HitRow(area)

	if l.LaneSpacing > 0 {
		for i := 0; i <= l.Lanes; i++ {
			s.DrawVLine(x0+i*(l.LaneWidth+l.LaneSpacing), area.Y, area.H, l.LaneChar, core.ColorGray)
		}
	}

	for i := 0; i < l.Lanes; i++ {
		x := x0 + l.LaneX(i)
		c := core.ColorWhite
		if i < len(snap.Held) && snap.Held[i] {
			c = core.ColorBrightYellow
		}
		s.DrawHLine(x, hit, l.LaneWidth, l.HitLineChar, c)
		if i < len(l.Labels) && hit+1 < area.Bottom() {
			label := l.Labels[i]
			if label == " " {
				label = "␣"
			}
			lx := x + (l.LaneWidth-utf8.RuneCountInString(label))/2
			s.DrawTextColor(lx, hit+1, label, c)
		}
	}

	for _, n := range snap.Notes {
		if n.Hidden() || n.Column >= l.Lanes {
			continue
		}
		drawNote(s, n, snap.SongTime, l, area, x0+l.LaneX(n.Column))
	}

	drawBanner(s, snap, l, area, x0, hit)
}

func drawNote(s *core.Screen, n session.NoteView, now int64, l Layout, area core.Rect, x int) {
	c := laneColor(n.Column, l.Lanes)
	if n.Head.Status == judge.Missed {
		c = core.ColorGray
	}

	if !n.Hold {
		y := l.RowFor(area, n.TimeMs, now)
		if y >= area.Y && y < area.Bottom() {
			s.DrawHLine(x, y, l.LaneWidth, l.NoteChar, c)
		}
		return
	}

	head := n.TimeMs
	if n.Holding {
		head = max(head, now)
		c = core.ColorBrightYellow
	}
	top := l.RowFor(area, n.EndMs, now)
	bottom := l.RowFor(area, head, now)
	for y := max(top, area.Y); y <= min(bottom, area.Bottom()-1); y++ {
		glyph := l.BodyChar
		if y == bottom {
			glyph = l.HeadChar
		}
		s.DrawHLine(x, y, l.LaneWidth, glyph, c)
	}
}

func drawBanner(s *core.Screen, snap session.Snapshot, l Layout, area core.Rect, x0, hit int) {
	y := max(hit-4, area.Y)
	center := func(text string, c core.Color) {
		x := x0 + (l.Width()-utf8.RuneCountInString(text))/2
		s.DrawTextColor(max(x, area.X), y, text, c)
	}

	switch {
	case snap.State == session.LeadIn:
		center(fmt.Sprintf("READY %d", (-snap.SongTime+999)/1000), core.ColorBrightWhite)
	case snap.HasLast && snap.SongTime-snap.Last.AtMs < judgmentFlashMs:
		center(snap.Last.Tier.String(), TierColor(snap.Last.Tier))
	}
}

// laneColor gives symmetric lane colors with a distinct center lane.
func laneColor(lane, lanes int) core.Color {
	if lanes%2 == 1 && lane == lanes/2 {
		return core.ColorBrightYellow
	}
	mirrored := min(lane, lanes-1-lane)
	if mirrored%2 == 0 {
		return core.ColorBrightWhite
	}
	return core.ColorBrightCyan
}

// TierColor is the display color of a judgment tier.
func TierColor(t judge.Tier) core.Color {
	switch t {
	case judge.Marv:
		return core.ColorBrightCyan
	case judge.Perf:
		return core.ColorBrightYellow
	case judge.Great:
		return core.ColorBrightGreen
	case judge.Good:
		return core.ColorBlue
	case judge.OK:
		return core.ColorMagenta
	default:
		return core.ColorRed
	}
}
