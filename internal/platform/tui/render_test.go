package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/termania/internal/core"
)

func TestRenderScreenKeepsRuns(t *testing.T) {
	s := core.NewScreen(8, 2)
	s.DrawTextColor(0, 0, "###", core.ColorRed)
	s.DrawTextColor(3, 0, "==", core.ColorGray)
	s.DrawText(0, 1, "ab")

	out := RenderScreen(s)
	for _, want := range []string{"###", "==", "ab"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderScreen() missing run %q in %q", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 1 {
		t.Errorf("RenderScreen() has %d newlines, expected 1", got)
	}
}

func TestRenderScreenEmpty(t *testing.T) {
	if got := RenderScreen(core.NewScreen(0, 0)); got != "" {
		t.Errorf("RenderScreen(empty) = %q, expected empty", got)
	}
}
